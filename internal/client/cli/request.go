package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/supportdesk/internal/client/dispatcher"
	"github.com/dmitrijs2005/supportdesk/internal/client/outcome"
)

var errBadInput = errors.New("bad input")

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// Call sends one request. args[0] is the path; the rest, if any, is the JSON
// body. POST, PUT and PATCH without an inline body prompt for one.
func (a *App) Call(ctx context.Context, method string, args []string) error {
	path := args[0]

	raw := strings.TrimSpace(strings.Join(args[1:], " "))
	if raw == "" && method != http.MethodGet && method != http.MethodDelete {
		text, err := readJSONBody(a.reader, "Enter JSON body", a.out)
		if err != nil {
			return err
		}
		raw = text
	}

	var body any
	if raw != "" {
		if !json.Valid([]byte(raw)) {
			a.println("Body is not valid JSON")
			return errBadInput
		}
		body = json.RawMessage(raw)
	}

	resp, err := a.client.Send(ctx, dispatcher.NewDescriptor(method, path, body)).Get()
	if err != nil {
		a.report(err)
		return err
	}

	a.println(resp.Status, http.StatusText(resp.Status))
	a.printBody(resp.Body)
	return nil
}

func (a *App) printBody(body []byte) {
	if len(bytes.TrimSpace(body)) == 0 {
		return
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		a.println(string(body))
		return
	}
	a.println(buf.String())
}

// Burst sends n concurrent GETs to path and prints a summary. When the
// access credential has expired all of them share a single refresh.
func (a *App) Burst(ctx context.Context, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		a.println("Usage: burst <n> <path>, n must be a positive number")
		return errBadInput
	}

	ds := make([]dispatcher.Descriptor, n)
	for i := range ds {
		ds[i] = dispatcher.NewDescriptor(http.MethodGet, args[1], nil)
	}

	before := a.client.Refreshes()
	start := time.Now()
	results := a.client.SendAll(ctx, 0, ds...)
	took := time.Since(start)

	var ok int
	failed := map[outcome.Kind]int{}
	for _, r := range results {
		if r.Ok() {
			ok++
			continue
		}
		failed[r.Failure().Kind]++
	}

	a.println(fmt.Sprintf("%d ok, %d failed in %s, refreshes: %d", ok, n-ok, took.Round(time.Millisecond), a.client.Refreshes()-before))

	kinds := make([]string, 0, len(failed))
	for k := range failed {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		a.println(fmt.Sprintf("  %s: %d", k, failed[outcome.Kind(k)]))
	}
	return nil
}

// Status prints session, refresh and connectivity state.
func (a *App) Status(ctx context.Context) error {
	session := "none"
	if a.isLoggedIn() {
		session = "active"
		if p, ok := a.client.Profile(); ok && p.Email != "" {
			session = "active (" + p.Email + ")"
		}
	}
	mode := a.getMode()
	if mode == "" {
		mode = "unknown"
	}

	a.println("session:  ", session)
	a.println("refresh:  ", a.client.RefreshState(), "refreshes:", a.client.Refreshes())
	a.println("server:   ", a.config.ServerURL, string(mode))
	return nil
}
