package upstream

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// dumpPayload writes an outgoing payload as an indented JSON block.
func (c *Client) dumpPayload(title string, payload []byte) {
	c.writeDebugDumpBlock(title, pretty.Pretty(payload))
}

func (c *Client) dumpUpstreamResponse(resp *http.Response) {
	if c == nil || !c.debug || resp == nil {
		return
	}

	headerDump, err := httputil.DumpResponse(resp, false)
	if err != nil {
		slog.Error("upstream.response.dump.failed", "error", err)
	} else {
		c.writeDebugDumpBlock("UPSTREAM RESPONSE", headerDump)
	}

	if resp.Body != nil {
		title := fmt.Sprintf("UPSTREAM RESPONSE BODY status=%d", resp.StatusCode)
		c.writeDebugDumpBoundary(title, true)
		contentType := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Type")))
		resp.Body = &debugDumpReadCloser{
			src:    resp.Body,
			client: c,
			title:  title,
			sse:    strings.Contains(contentType, "text/event-stream"),
		}
	}
}

func (c *Client) writeDebugDumpBlock(title string, data []byte) {
	c.writeDebugDumpBoundary(title, true)
	if len(data) > 0 {
		c.writeDebugDumpChunk(data)
		if data[len(data)-1] != '\n' {
			c.writeDebugDumpChunk([]byte("\n"))
		}
	}
	c.writeDebugDumpBoundary(title, false)
}

func (c *Client) writeDebugDumpBoundary(title string, begin bool) {
	kind := "END"
	if begin {
		kind = "BEGIN"
	}
	c.writeDebugDumpChunk([]byte("===== " + strings.TrimSpace(title) + " " + kind + " =====\n"))
}

func (c *Client) writeDebugDumpChunk(data []byte) {
	if c == nil || len(data) == 0 {
		return
	}
	c.dumpMu.Lock()
	defer c.dumpMu.Unlock()
	if _, err := c.dumpOut.Write(data); err != nil {
		slog.Error("upstream.dump.write.failed", "error", err)
	}
}

// debugDumpReadCloser mirrors a response body into the debug dump as the
// caller reads it. Event streams only dump their terminal events.
type debugDumpReadCloser struct {
	src      io.ReadCloser
	client   *Client
	title    string
	sse      bool
	sseBuf   []byte
	closed   bool
	lastByte byte
	hasData  bool
}

func (d *debugDumpReadCloser) Read(p []byte) (int, error) {
	n, err := d.src.Read(p)
	if n > 0 {
		if d.sse {
			d.sseBuf = append(d.sseBuf, p[:n]...)
			d.flushCompletedEvents(false)
		} else {
			d.writeRawChunk(p[:n])
		}
	}
	if err == io.EOF {
		d.finish()
	}
	return n, err
}

func (d *debugDumpReadCloser) Close() error {
	err := d.src.Close()
	d.finish()
	return err
}

func (d *debugDumpReadCloser) finish() {
	if d.closed {
		return
	}
	d.closed = true
	d.flushCompletedEvents(true)
	if d.hasData && d.lastByte != '\n' {
		d.client.writeDebugDumpChunk([]byte("\n"))
	}
	d.client.writeDebugDumpBoundary(d.title, false)
}

func (d *debugDumpReadCloser) flushCompletedEvents(final bool) {
	for {
		idx := bytes.Index(d.sseBuf, []byte("\n\n"))
		if idx < 0 {
			break
		}
		frame := d.sseBuf[:idx]
		d.sseBuf = d.sseBuf[idx+2:]
		d.handleSSEFrame(frame)
	}
	if final && len(d.sseBuf) > 0 {
		d.handleSSEFrame(d.sseBuf)
		d.sseBuf = nil
	}
}

func (d *debugDumpReadCloser) handleSSEFrame(frame []byte) {
	for _, rawLine := range bytes.Split(frame, []byte{'\n'}) {
		line := bytes.TrimSpace(rawLine)
		if !bytes.HasPrefix(line, []byte("data:")) {
			continue
		}
		payload := bytes.TrimSpace(line[len("data:"):])
		if !isTerminalEvent(payload) {
			continue
		}
		d.hasData = true
		d.lastByte = '\n'
		d.client.writeDebugDumpChunk([]byte("data: "))
		d.client.writeDebugDumpChunk(payload)
		d.client.writeDebugDumpChunk([]byte("\n\n"))
	}
}

// isTerminalEvent reports whether an SSE data payload ends a stream: the
// [DONE] marker, a chat chunk with a finish_reason, or a completed,
// failed or incomplete Responses event.
func isTerminalEvent(payload []byte) bool {
	if bytes.Equal(payload, []byte("[DONE]")) {
		return true
	}
	if !gjson.ValidBytes(payload) {
		return false
	}
	switch gjson.GetBytes(payload, "type").String() {
	case "response.completed", "response.failed", "response.incomplete":
		return true
	}
	reason := gjson.GetBytes(payload, "choices.0.finish_reason")
	return reason.Exists() && reason.Type != gjson.Null
}

func (d *debugDumpReadCloser) writeRawChunk(chunk []byte) {
	d.hasData = true
	d.lastByte = chunk[len(chunk)-1]
	d.client.writeDebugDumpChunk(chunk)
}
