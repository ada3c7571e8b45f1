// Package intersphinx fetches and parses intersphinx inventories
// (Sphinx objects.inv files, versions 1 and 2).
package intersphinx

import (
	"bufio"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/docdex/docdex"
)

// DefaultFetchTimeout is the default timeout for inventory requests.
const DefaultFetchTimeout = 10 * time.Second

// headerRe matches the inventory format/version line.
var headerRe = regexp.MustCompile(`^# Sphinx inventory version (\d+)$`)

// entryRe matches one v2 body line: name, "domain:role", priority,
// location, display name. Names may contain spaces.
var entryRe = regexp.MustCompile(`^(.+?)\s+(\S+:\S+)\s+(-?\d+)\s+(\S*)\s+(.*)$`)

// Ensure Fetcher implements docdex.InventoryFetcher at compile time.
var _ docdex.InventoryFetcher = (*Fetcher)(nil)

// Fetcher retrieves inventories over HTTP and parses them.
type Fetcher struct {
	client  *http.Client
	limiter docdex.DomainLimiter
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for inventory requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

// WithLimiter applies per-domain rate limiting to inventory requests.
func WithLimiter(l docdex.DomainLimiter) Option {
	return func(f *Fetcher) { f.limiter = l }
}

// NewFetcher creates a new inventory Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(f)
	}
	f.client = &http.Client{Timeout: f.timeout}
	return f
}

// FetchInventory retrieves and parses the inventory published at rawurl.
// Connectivity failures and non-2xx responses are EUNAVAILABLE (retryable);
// an unsupported or malformed payload is EINVALID (permanent).
func (f *Fetcher) FetchInventory(ctx context.Context, rawurl string) (*docdex.Inventory, error) {
	if f.limiter != nil {
		u, err := url.Parse(rawurl)
		if err != nil {
			return nil, docdex.Errorf(docdex.EINVALID, "invalid inventory URL %q", rawurl)
		}
		if err := f.limiter.Wait(ctx, u.Hostname()); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, docdex.Errorf(docdex.EINVALID, "invalid inventory URL %q", rawurl)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, docdex.Errorf(docdex.EUNAVAILABLE, "fetching inventory %s: %v", rawurl, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, docdex.Errorf(docdex.EUNAVAILABLE, "fetching inventory %s: HTTP %d", rawurl, resp.StatusCode)
	}

	inv, err := Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing inventory %s: %w", rawurl, err)
	}
	return inv, nil
}

// Parse reads an objects.inv payload. The header determines the format:
// version 1 bodies are plaintext, version 2 bodies are zlib-compressed.
func Parse(r io.Reader) (*docdex.Inventory, error) {
	br := bufio.NewReader(r)

	header, err := readLine(br)
	if err != nil {
		return nil, docdex.Errorf(docdex.EINVALID, "unreadable inventory header")
	}
	m := headerRe.FindStringSubmatch(header)
	if m == nil {
		return nil, docdex.Errorf(docdex.EINVALID, "unrecognized inventory header %q", header)
	}
	version := m[1]

	inv := &docdex.Inventory{}
	for _, field := range []struct {
		prefix string
		dst    *string
	}{
		{"# Project: ", &inv.Project},
		{"# Version: ", &inv.Version},
	} {
		line, err := readLine(br)
		if err != nil {
			return nil, docdex.Errorf(docdex.EINVALID, "truncated inventory header")
		}
		*field.dst = strings.TrimPrefix(line, field.prefix)
	}

	switch version {
	case "1":
		return parseV1(br, inv)
	case "2":
		return parseV2(br, inv)
	default:
		return nil, docdex.Errorf(docdex.EINVALID, "unsupported inventory version %s", version)
	}
}

// parseV1 reads the plaintext v1 body: "name type location" per line.
func parseV1(br *bufio.Reader, inv *docdex.Inventory) (*docdex.Inventory, error) {
	sc := bufio.NewScanner(br)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 3 {
			continue
		}
		name, typ, location := fields[0], fields[1], fields[2]
		// v1 predates domains; the original format's two object types
		// map onto the py domain.
		group := "py:" + typ
		if typ == "mod" {
			group = "py:module"
			location += "#module-" + name
		} else {
			location += "#" + name
		}
		inv.Entries = append(inv.Entries, docdex.InventoryEntry{
			Group:    group,
			Name:     name,
			Location: location,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, docdex.Errorf(docdex.EINVALID, "reading inventory body: %v", err)
	}
	return inv, nil
}

// parseV2 decompresses and reads the zlib v2 body.
func parseV2(br *bufio.Reader, inv *docdex.Inventory) (*docdex.Inventory, error) {
	compression, err := readLine(br)
	if err != nil || !strings.Contains(compression, "zlib") {
		return nil, docdex.Errorf(docdex.EINVALID, "unsupported compression line %q", compression)
	}

	zr, err := zlib.NewReader(br)
	if err != nil {
		return nil, docdex.Errorf(docdex.EINVALID, "corrupt inventory body: %v", err)
	}
	defer zr.Close()

	sc := bufio.NewScanner(zr)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		m := entryRe.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		name, group, location := m[1], m[2], m[4]
		// A "$" location is shorthand for the entry's own name.
		if strings.HasSuffix(location, "$") {
			location = location[:len(location)-1] + name
		}
		inv.Entries = append(inv.Entries, docdex.InventoryEntry{
			Group:    group,
			Name:     name,
			Location: location,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, docdex.Errorf(docdex.EINVALID, "reading inventory body: %v", err)
	}
	return inv, nil
}

func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
