package bonjour

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
	dnssdmocks "github.com/mash-protocol/bonjour-go/pkg/dnssd/mocks"
)

// fakeResolve is one Resolve call captured by browserHarness.
type fakeResolve struct {
	ref      *dnssdmocks.MockServiceRef
	callback dnssd.ResolveReply
}

// browserHarness drives a Browser through captured library callbacks.
type browserHarness struct {
	browser   *Browser
	browseRef *dnssdmocks.MockServiceRef
	reply     dnssd.BrowseReply
	resolves  map[string][]*fakeResolve

	resolved []Event
	removed  []Event
	errors   []Event
}

func newBrowserHarness(t *testing.T, config BrowserConfig) *browserHarness {
	h := &browserHarness{
		browseRef: newMockRef(t),
		resolves:  make(map[string][]*fakeResolve),
	}

	lib := dnssdmocks.NewMockLibrary(t)
	lib.EXPECT().Browse(mock.Anything, mock.Anything, "_echo._tcp", "local", mock.Anything).
		RunAndReturn(func(_ dnssd.Flags, _ uint32, _, _ string, cb dnssd.BrowseReply) (dnssd.ServiceRef, error) {
			h.reply = cb
			return h.browseRef, nil
		}).Once()
	lib.EXPECT().Resolve(mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(_ dnssd.Flags, _ uint32, name, _, _ string, cb dnssd.ResolveReply) (dnssd.ServiceRef, error) {
			r := &fakeResolve{ref: newMockRef(t), callback: cb}
			h.resolves[name] = append(h.resolves[name], r)
			return r.ref, nil
		}).Maybe()

	config.Regtype = "_echo._tcp"
	config.OnResolved = func(ev Event) { h.resolved = append(h.resolved, ev) }
	config.OnRemoved = func(ev Event) { h.removed = append(h.removed, ev) }
	config.OnError = func(ev Event) { h.errors = append(h.errors, ev) }

	b, err := NewBrowser(lib, newPermissiveLoop(t), config)
	require.NoError(t, err)
	require.NoError(t, b.StartBrowsing())
	h.browser = b
	return h
}

func (h *browserHarness) browse(flags dnssd.Flags, code dnssd.ErrorCode, name string) {
	h.reply(h.browseRef, flags, 0, code, name, "_echo._tcp.", "local.")
}

func (h *browserHarness) resolve(name, host string, port uint16) {
	rs := h.resolves[name]
	r := rs[len(rs)-1]
	r.callback(r.ref, 0, 0, dnssd.ErrNoError, name+"._echo._tcp.local.", host, port, dnssd.TXTRecord{"client_id": "station-1"})
}

func pendingNames(b *Browser) []string {
	var names []string
	for _, k := range b.Pending() {
		names = append(names, k.Name)
	}
	return names
}

func TestBrowserRemovalIffAddAbsent(t *testing.T) {
	tests := []struct {
		name        string
		flags       dnssd.Flags
		code        dnssd.ErrorCode
		wantRemoved bool
		wantResolve bool
		wantError   bool
	}{
		{"Add", dnssd.FlagsAdd, dnssd.ErrNoError, false, true, false},
		{"AddMoreComing", dnssd.FlagsAdd | dnssd.FlagsMoreComing, dnssd.ErrNoError, false, true, false},
		{"Remove", 0, dnssd.ErrNoError, true, false, false},
		{"RemoveMoreComing", dnssd.FlagsMoreComing, dnssd.ErrNoError, true, false, false},
		{"RemoveWithError", 0, dnssd.ErrUnknown, true, false, true},
		{"AddWithError", dnssd.FlagsAdd, dnssd.ErrUnknown, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newBrowserHarness(t, BrowserConfig{})
			h.browse(tt.flags, tt.code, "A")

			assert.Equal(t, tt.wantRemoved, len(h.removed) == 1, "removed")
			assert.Equal(t, tt.wantResolve, len(h.resolves["A"]) == 1, "resolver created")
			assert.Equal(t, tt.wantError, len(h.errors) == 1, "error reported")
			if tt.wantError {
				var browseErr *BrowseError
				assert.ErrorAs(t, h.errors[0].Err(), &browseErr)
			}
		})
	}
}

func TestBrowserAddAddRemove(t *testing.T) {
	h := newBrowserHarness(t, BrowserConfig{})

	h.browse(dnssd.FlagsAdd|dnssd.FlagsMoreComing, dnssd.ErrNoError, "A")
	h.browse(dnssd.FlagsAdd, dnssd.ErrNoError, "B")
	assert.Equal(t, []string{"A", "B"}, pendingNames(h.browser))

	h.browse(0, dnssd.ErrNoError, "A")

	require.Len(t, h.resolves["A"], 1)
	require.Len(t, h.resolves["B"], 1)
	assert.Equal(t, []string{"B"}, pendingNames(h.browser))
	assert.Equal(t, 1, closeCalls(h.resolves["A"][0].ref))
	require.Len(t, h.removed, 1)
	assert.Equal(t, "A", h.removed[0].Name)
	assert.False(t, h.removed[0].Added)

	h.resolve("B", "station.local.", 9000)

	require.Len(t, h.resolved, 1)
	assert.Equal(t, "B", h.resolved[0].Name)
	assert.Equal(t, uint16(9000), h.resolved[0].Port)
	assert.Equal(t, "station-1", h.resolved[0].TXT["client_id"])
	assert.Empty(t, h.browser.Pending())
	assert.Equal(t, 1, closeCalls(h.resolves["B"][0].ref))
}

func TestBrowserDuplicateAddKeepsResolver(t *testing.T) {
	h := newBrowserHarness(t, BrowserConfig{})

	h.browse(dnssd.FlagsAdd, dnssd.ErrNoError, "A")
	h.browse(dnssd.FlagsAdd, dnssd.ErrNoError, "A")

	assert.Len(t, h.resolves["A"], 1)
	assert.Len(t, h.browser.Pending(), 1)
}

func TestBrowserReaddAfterResolveStartsNewResolver(t *testing.T) {
	h := newBrowserHarness(t, BrowserConfig{})

	h.browse(dnssd.FlagsAdd, dnssd.ErrNoError, "A")
	h.resolve("A", "a.local.", 9000)
	h.browse(dnssd.FlagsAdd, dnssd.ErrNoError, "A")

	assert.Len(t, h.resolves["A"], 2)
}

func TestBrowserRemovalIsCaseInsensitive(t *testing.T) {
	h := newBrowserHarness(t, BrowserConfig{})

	h.browse(dnssd.FlagsAdd, dnssd.ErrNoError, "Kitchen")
	h.browse(0, dnssd.ErrNoError, "kitchen")

	assert.Empty(t, h.browser.Pending())
}

func TestBrowserStopStopsResolvers(t *testing.T) {
	h := newBrowserHarness(t, BrowserConfig{})

	h.browse(dnssd.FlagsAdd, dnssd.ErrNoError, "A")
	h.browse(dnssd.FlagsAdd, dnssd.ErrNoError, "B")

	h.browser.StopBrowsing()
	h.browser.StopBrowsing()

	assert.False(t, h.browser.IsBrowsing())
	assert.Empty(t, h.browser.Pending())
	assert.Equal(t, 1, closeCalls(h.browseRef))
	assert.Equal(t, 1, closeCalls(h.resolves["A"][0].ref))
	assert.Equal(t, 1, closeCalls(h.resolves["B"][0].ref))
}

func TestBrowserContinuousResolve(t *testing.T) {
	h := newBrowserHarness(t, BrowserConfig{ContinuousResolve: true})

	h.browse(dnssd.FlagsAdd, dnssd.ErrNoError, "A")
	h.resolve("A", "a.local.", 9000)
	h.resolve("A", "a.local.", 9001)

	assert.Len(t, h.resolved, 2)
	assert.Equal(t, []string{"A"}, pendingNames(h.browser))

	h.browse(0, dnssd.ErrNoError, "A")
	assert.Empty(t, h.browser.Pending())
}

func TestNewBrowserValidation(t *testing.T) {
	_, err := NewBrowser(newMemoryLibrary(), newPermissiveLoop(t), BrowserConfig{Regtype: "echo"})
	assert.ErrorIs(t, err, ErrInvalidRegtype)
}

func TestBrowserStartTwice(t *testing.T) {
	loop := newLoop(t)
	b, err := NewBrowser(newMemoryLibrary(), loop, BrowserConfig{Regtype: "_echo._tcp"})
	require.NoError(t, err)

	require.NoError(t, b.StartBrowsing())
	defer b.StopBrowsing()
	assert.ErrorIs(t, b.StartBrowsing(), ErrAlreadyStarted)
}
