package intersphinx_test

import (
	"bytes"
	"compress/zlib"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/intersphinx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inventoryV2 builds an objects.inv v2 payload from raw body lines.
func inventoryV2(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("# Sphinx inventory version 2\n")
	buf.WriteString("# Project: testproj\n")
	buf.WriteString("# Version: 1.0\n")
	buf.WriteString("# The remainder of this file is compressed using zlib.\n")
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParse_V2(t *testing.T) {
	t.Parallel()

	payload := inventoryV2(t, ""+
		"asyncio py:module 0 library/asyncio.html#module-asyncio -\n"+
		"asyncio.run py:function 1 library/asyncio-runner.html#$ -\n"+
		"Grammar Token token:doc -1 reference/grammar.html#grammar-token-grammar -\n")

	inv, err := intersphinx.Parse(bytes.NewReader(payload))
	require.NoError(t, err)

	assert.Equal(t, "testproj", inv.Project)
	assert.Equal(t, "1.0", inv.Version)
	require.Len(t, inv.Entries, 3)

	assert.Equal(t, docdex.InventoryEntry{
		Group:    "py:module",
		Name:     "asyncio",
		Location: "library/asyncio.html#module-asyncio",
	}, inv.Entries[0])

	// "$" expands to the entry's own name.
	assert.Equal(t, "library/asyncio-runner.html#asyncio.run", inv.Entries[1].Location)

	// Names with spaces and arbitrary groups are preserved verbatim.
	assert.Equal(t, "Grammar Token", inv.Entries[2].Name)
	assert.Equal(t, "token:doc", inv.Entries[2].Group)
}

func TestParse_V1(t *testing.T) {
	t.Parallel()

	payload := "" +
		"# Sphinx inventory version 1\n" +
		"# Project: oldproj\n" +
		"# Version: 0.1\n" +
		"asyncio mod library/asyncio.html\n" +
		"asyncio.run function library/asyncio-runner.html\n"

	inv, err := intersphinx.Parse(bytes.NewReader([]byte(payload)))
	require.NoError(t, err)

	require.Len(t, inv.Entries, 2)
	assert.Equal(t, "py:module", inv.Entries[0].Group)
	assert.Equal(t, "library/asyncio.html#module-asyncio", inv.Entries[0].Location)
	assert.Equal(t, "py:function", inv.Entries[1].Group)
	assert.Equal(t, "library/asyncio-runner.html#asyncio.run", inv.Entries[1].Location)
}

func TestParse_InvalidHeader(t *testing.T) {
	t.Parallel()

	t.Run("not an inventory", func(t *testing.T) {
		t.Parallel()

		_, err := intersphinx.Parse(bytes.NewReader([]byte("<html>not found</html>")))
		assert.Equal(t, docdex.EINVALID, docdex.ErrorCode(err))
	})

	t.Run("unsupported version", func(t *testing.T) {
		t.Parallel()

		payload := "# Sphinx inventory version 3\n# Project: x\n# Version: 1\n"
		_, err := intersphinx.Parse(bytes.NewReader([]byte(payload)))
		assert.Equal(t, docdex.EINVALID, docdex.ErrorCode(err))
	})

	t.Run("corrupt compressed body", func(t *testing.T) {
		t.Parallel()

		payload := "" +
			"# Sphinx inventory version 2\n" +
			"# Project: x\n" +
			"# Version: 1\n" +
			"# The remainder of this file is compressed using zlib.\n" +
			"this is not zlib data"
		_, err := intersphinx.Parse(bytes.NewReader([]byte(payload)))
		assert.Equal(t, docdex.EINVALID, docdex.ErrorCode(err))
	})
}

func TestFetcher_FetchInventory(t *testing.T) {
	t.Parallel()

	t.Run("fetches and parses", func(t *testing.T) {
		t.Parallel()

		payload := inventoryV2(t, "int py:class 1 library/functions.html#int -\n")
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(payload)
		}))
		defer srv.Close()

		f := intersphinx.NewFetcher()
		inv, err := f.FetchInventory(context.Background(), srv.URL+"/objects.inv")
		require.NoError(t, err)
		require.Len(t, inv.Entries, 1)
		assert.Equal(t, "int", inv.Entries[0].Name)
	})

	t.Run("server error is transient", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		f := intersphinx.NewFetcher()
		_, err := f.FetchInventory(context.Background(), srv.URL+"/objects.inv")
		assert.Equal(t, docdex.EUNAVAILABLE, docdex.ErrorCode(err))
	})

	t.Run("connection refused is transient", func(t *testing.T) {
		t.Parallel()

		f := intersphinx.NewFetcher()
		_, err := f.FetchInventory(context.Background(), "http://127.0.0.1:1/objects.inv")
		assert.Equal(t, docdex.EUNAVAILABLE, docdex.ErrorCode(err))
	})

	t.Run("malformed payload is permanent", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>surprise</html>"))
		}))
		defer srv.Close()

		f := intersphinx.NewFetcher()
		_, err := f.FetchInventory(context.Background(), srv.URL+"/objects.inv")
		assert.Equal(t, docdex.EINVALID, docdex.ErrorCode(err))
	})
}
