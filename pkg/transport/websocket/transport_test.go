package websockets

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/QYUbit/replibind/pkg/transport"
)

func TestPeerStream(t *testing.T) {
	tr := NewTransport("", "/")
	srv := httptest.NewServer(tr)
	defer srv.Close()
	defer tr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dialer{}.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close(transport.CloseNormal, "")

	host, err := tr.Accept(ctx)
	if err != nil {
		t.Fatal(err)
	}

	// Two messages must read back as one contiguous stream.
	if _, err := client.Write([]byte("hel")); err != nil {
		t.Fatal(err)
	}
	if _, err := client.Write([]byte("lo")); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 5)
	if _, err := io.ReadFull(host, buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "hello" {
		t.Errorf("expected hello, got %q", buf)
	}
}

func TestAcceptAfterClose(t *testing.T) {
	tr := NewTransport("", "/")
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Accept(context.Background()); err != transport.ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
