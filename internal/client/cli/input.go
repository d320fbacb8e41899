package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Terminal seams, replaced in tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// ReadLine writes prompt and reads one trimmed line. A final line without a
// newline is accepted; EOF with no input is returned as io.EOF.
//
//	Enter email
//	> _
func ReadLine(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadSecret reads a password without echo when stdin is a terminal. With
// redirected stdin it falls back to ReadLine on reader. The caller wipes the
// returned slice.
func ReadSecret(reader *bufio.Reader, prompt string, w io.Writer) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		line, err := ReadLine(reader, prompt, w)
		if err != nil {
			return nil, err
		}
		return []byte(line), nil
	}

	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// ReadJSONBody collects a request body line by line. It stops as soon as
// the text read so far is a complete JSON value, or at an empty line or EOF.
// Whatever was collected is returned; validation is left to the caller.
func ReadJSONBody(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(finish with an empty line)\n"); err != nil {
		return "", err
	}

	var sb strings.Builder
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(line)
			if json.Valid([]byte(sb.String())) {
				break
			}
		}
		if line == "" || err != nil {
			break
		}
	}

	return strings.TrimSpace(sb.String()), nil
}
