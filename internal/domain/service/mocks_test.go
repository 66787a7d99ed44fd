package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/Badsnus/qr-studio/internal/domain/entity"
)

func pngData(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

type fetchReply struct {
	data []byte
	err  error
}

// gatedFetcher blocks every Fetch until the test releases the URL.
type gatedFetcher struct {
	mu    sync.Mutex
	gates map[string]chan fetchReply
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{gates: make(map[string]chan fetchReply)}
}

func (f *gatedFetcher) gate(url string) chan fetchReply {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.gates[url]
	if !ok {
		g = make(chan fetchReply, 1)
		f.gates[url] = g
	}
	return g
}

func (f *gatedFetcher) release(url string, data []byte, err error) {
	f.gate(url) <- fetchReply{data: data, err: err}
}

func (f *gatedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	select {
	case r := <-f.gate(url):
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type mockFetcher struct {
	fetchFunc func(ctx context.Context, url string) ([]byte, error)
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, url)
	}
	return nil, errors.New("not found")
}

type mockRenderer struct {
	mu           sync.Mutex
	requests     []RenderRequest
	renderFunc   func(req RenderRequest) (image.Image, error)
	downloadFunc func(format, fileName string) (string, error)
}

func (m *mockRenderer) Render(_ context.Context, req RenderRequest) (image.Image, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.renderFunc != nil {
		return m.renderFunc(req)
	}
	return image.NewRGBA(image.Rect(0, 0, req.Size, req.Size)), nil
}

func (m *mockRenderer) DownloadAsRaster(_ context.Context, _ image.Image, format, fileName string) (string, error) {
	if m.downloadFunc != nil {
		return m.downloadFunc(format, fileName)
	}
	return "out/" + fileName + "." + format, nil
}

func (m *mockRenderer) lastRequest() RenderRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}

type mockJournal struct {
	mu      sync.Mutex
	records []*entity.ExportRecord
	err     error
}

func (m *mockJournal) Create(_ context.Context, rec *entity.ExportRecord) (*entity.ExportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.records = append(m.records, rec)
	return rec, nil
}

func waitStatus(t *testing.T, ch <-chan Status) Status {
	t.Helper()
	select {
	case st := <-ch:
		return st
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for status")
	}
	return Status{}
}
