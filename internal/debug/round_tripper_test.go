package debug

import (
	"testing"

	rtest "github.com/bcup/bcup/internal/test"
)

func TestRedactToken(t *testing.T) {
	for _, test := range []struct {
		in, out string
	}{
		{
			"POST /bot123456:ABC-def_x/sendDocument HTTP/1.1\r\n",
			"POST /bot**redacted**/sendDocument HTTP/1.1\r\n",
		},
		{
			"GET /bot42:x/getUpdates?offset=7 HTTP/1.1\r\n",
			"GET /bot**redacted**/getUpdates?offset=7 HTTP/1.1\r\n",
		},
		{
			"GET /healthz HTTP/1.1\r\n",
			"GET /healthz HTTP/1.1\r\n",
		},
	} {
		rtest.Equals(t, test.out, string(redactToken([]byte(test.in))))
	}
}

func TestCheckFilter(t *testing.T) {
	filter := map[string]bool{
		"*/walker.go:*": true,
		"*/zip.go:12":   false,
	}

	rtest.Assert(t, checkFilter(filter, "archiver/walker.go:40"), "walker.go should match")
	rtest.Assert(t, !checkFilter(filter, "archive/zip.go:12"), "zip.go:12 is disabled")
	rtest.Assert(t, !checkFilter(filter, "archive/zip.go:13"), "zip.go:13 is not listed")

	filter["all"] = true
	rtest.Assert(t, checkFilter(filter, "archive/zip.go:13"), "all should enable everything else")
}

func TestPadFile(t *testing.T) {
	rtest.Equals(t, "*/walker.go:*", padFile("walker.go"))
	rtest.Equals(t, "archiver/walker.go:*", padFile("archiver/walker.go"))
	rtest.Equals(t, "*/walker.go:10", padFile("walker.go:10"))
	rtest.Equals(t, "all", padFile("all"))
}
