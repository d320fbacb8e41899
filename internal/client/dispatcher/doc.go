// Package dispatcher performs single outbound HTTP calls for the
// authenticated client.
//
// A Dispatcher takes a Descriptor and an optional access credential and
// returns either the raw *Response (whatever status the remote produced,
// 401 included) or a *TransportError when no response was received. It has
// no knowledge of refresh or retries, so the layers above it can be tested
// against a scripted fake.
package dispatcher
