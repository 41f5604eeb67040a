package middleware

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type flushHijackWriter struct {
	http.ResponseWriter
	flushed  bool
	hijacked bool
}

func (f *flushHijackWriter) Flush() { f.flushed = true }

func (f *flushHijackWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	f.hijacked = true
	return nil, nil, nil
}

type bareWriter struct{ header http.Header }

func (b *bareWriter) Header() http.Header {
	if b.header == nil {
		b.header = make(http.Header)
	}
	return b.header
}
func (b *bareWriter) Write(p []byte) (int, error) { return len(p), nil }
func (b *bareWriter) WriteHeader(int)             {}

func TestStatusRecorder_FirstStatusWins(t *testing.T) {
	rec := newStatusRecorder(httptest.NewRecorder())
	rec.WriteHeader(http.StatusCreated)
	rec.WriteHeader(http.StatusInternalServerError)
	n, _ := rec.Write([]byte("abc"))

	assert.Equal(t, http.StatusCreated, rec.status)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, rec.bytes)
}

func TestStatusRecorder_ReusesExistingRecorder(t *testing.T) {
	inner := newStatusRecorder(httptest.NewRecorder())
	assert.Same(t, inner, newStatusRecorder(inner))
}

func TestStatusRecorder_DelegatesFlushAndHijack(t *testing.T) {
	under := &flushHijackWriter{ResponseWriter: httptest.NewRecorder()}
	rec := newStatusRecorder(under)

	rec.Flush()
	_, _, err := rec.Hijack()

	assert.NoError(t, err)
	assert.True(t, under.flushed)
	assert.True(t, under.hijacked)
	assert.Same(t, http.ResponseWriter(under), rec.Unwrap())
}

func TestStatusRecorder_HijackUnsupported(t *testing.T) {
	rec := newStatusRecorder(&bareWriter{})
	rec.Flush()
	_, _, err := rec.Hijack()
	assert.ErrorIs(t, err, http.ErrNotSupported)
}
