package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/newsdesk/internal/config"
)

type call struct {
	name string
	args []string
}

func recordingOpener(command string) (*Opener, *[]call) {
	var calls []call
	o := &Opener{command: command}
	o.start = func(name string, args ...string) error {
		calls = append(calls, call{name: name, args: args})
		return nil
	}
	return o, &calls
}

func TestOpen(t *testing.T) {
	o, calls := recordingOpener("xdg-open")

	require.NoError(t, o.Open("https://example.org/story?id=1"))
	require.Len(t, *calls, 1)
	assert.Equal(t, "xdg-open", (*calls)[0].name)
	assert.Equal(t, []string{"https://example.org/story?id=1"}, (*calls)[0].args)
}

func TestOpenRundll(t *testing.T) {
	o, calls := recordingOpener("rundll32")
	require.NoError(t, o.Open("http://example.org"))
	assert.Equal(t, []string{"url.dll,FileProtocolHandler", "http://example.org"}, (*calls)[0].args)
}

func TestOpenRejects(t *testing.T) {
	o, calls := recordingOpener("open")
	for _, raw := range []string{"javascript:alert(1)", "file:///etc/passwd", "ftp://x.org", "https://", "%zz"} {
		assert.Error(t, o.Open(raw), raw)
	}
	assert.Empty(t, *calls)
}

func TestNewOpener(t *testing.T) {
	cfg := config.TestConfig()
	cfg.UI.Opener = "firefox"
	assert.Equal(t, "firefox", NewOpener(cfg).command)

	cfg.UI.Opener = ""
	assert.Equal(t, defaultOpener(), NewOpener(cfg).command)
	assert.Equal(t, defaultOpener(), NewOpener(nil).command)
}
