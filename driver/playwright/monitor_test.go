package playwright

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))

	long := strings.Repeat("a", 2100)
	out := truncate(long, 2000)
	require.True(t, strings.HasPrefix(out, strings.Repeat("a", 2000)+"...(truncated 100 B)"), out)
}

func TestPrettyJSON(t *testing.T) {
	require.Equal(t, "{\n  \"a\": 1\n}", prettyJSON(`{"a":1}`))
	require.Equal(t, "not json", prettyJSON("not json"))
}
