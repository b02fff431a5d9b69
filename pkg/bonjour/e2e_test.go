package bonjour

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
	"github.com/mash-protocol/bonjour-go/pkg/log"
)

func TestAdvertiseBrowseResolveOverLoop(t *testing.T) {
	lib := newMemoryLibrary()
	loop := newLoop(t)
	rec := &recordingEvents{}

	var registered []Event
	adv, err := NewAdvertiser(lib, loop, AdvertiserConfig{
		Name:         "svcX",
		Regtype:      "_test._tcp",
		Domain:       "local",
		Port:         9000,
		TXT:          dnssd.TXTRecord{"client_id": "station-1"},
		OnRegistered: func(ev Event) { registered = append(registered, ev) },
		EventLog:     rec,
		Backend:      dnssd.BackendMemory,
	})
	require.NoError(t, err)

	var resolved, removed []Event
	browser, err := NewBrowser(lib, loop, BrowserConfig{
		Regtype:    "_test._tcp",
		OnResolved: func(ev Event) { resolved = append(resolved, ev) },
		OnRemoved:  func(ev Event) { removed = append(removed, ev) },
		EventLog:   rec,
		Backend:    dnssd.BackendMemory,
	})
	require.NoError(t, err)

	require.NoError(t, adv.StartAdvertising())
	require.NoError(t, browser.StartBrowsing())
	defer browser.StopBrowsing()

	iterateUntil(t, loop, func() bool { return len(resolved) > 0 })

	require.Len(t, registered, 1)
	assert.Equal(t, "svcX", registered[0].Name)

	ev := resolved[0]
	assert.Equal(t, dnssd.ErrNoError, ev.ErrorCode)
	assert.Equal(t, "svcX", ev.Name)
	assert.NotEmpty(t, ev.Host)
	assert.Equal(t, uint16(9000), ev.Port)
	assert.Equal(t, "station-1", ev.TXT["client_id"])
	assert.Empty(t, browser.Pending())

	adv.StopAdvertising()
	iterateUntil(t, loop, func() bool { return len(removed) > 0 })
	assert.Equal(t, "svcX", removed[0].Name)

	// Register, browse and resolve sessions each logged start and replies.
	ops := map[log.Operation]int{}
	for _, e := range rec.events {
		assert.NotEmpty(t, e.SessionID)
		assert.Equal(t, dnssd.BackendMemory, e.Backend)
		if e.Category == log.CategoryReply {
			ops[e.Operation]++
		}
	}
	assert.Equal(t, 1, ops[log.OperationRegister])
	assert.Equal(t, 2, ops[log.OperationBrowse])
	assert.Equal(t, 1, ops[log.OperationResolve])
}

func TestResolvedPortsInRange(t *testing.T) {
	lib := newMemoryLibrary()
	loop := newLoop(t)

	ports := []uint16{1, 8000, 65535}
	for i, port := range ports {
		adv, err := NewAdvertiser(lib, loop, AdvertiserConfig{
			Name:    string(rune('a' + i)),
			Regtype: "_test._tcp",
			Port:    port,
		})
		require.NoError(t, err)
		require.NoError(t, adv.StartAdvertising())
		defer adv.StopAdvertising()
	}

	var resolved []Event
	browser, err := NewBrowser(lib, loop, BrowserConfig{
		Regtype:    "_test._tcp",
		OnResolved: func(ev Event) { resolved = append(resolved, ev) },
	})
	require.NoError(t, err)
	require.NoError(t, browser.StartBrowsing())
	defer browser.StopBrowsing()

	iterateUntil(t, loop, func() bool { return len(resolved) == len(ports) })

	for _, ev := range resolved {
		assert.True(t, ev.OK())
		assert.NotEmpty(t, ev.Host)
		assert.GreaterOrEqual(t, ev.Port, uint16(1))
		assert.LessOrEqual(t, ev.Port, uint16(65535))
	}
}
