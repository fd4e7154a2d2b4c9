package resolver

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"zombiezen.com/go/nix/nixbase32"
)

const testDigest = "0c0jnkqkzr2b1rs1cjmm2pmagcbgr4ic"

func narString(buf *bytes.Buffer, s string) {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(s)))
	buf.Write(lenBuf[:])
	buf.WriteString(s)
	if pad := len(s) % 8; pad != 0 {
		buf.Write(make([]byte, 8-pad))
	}
}

// testNAR serialises a package with a single executable bin/uv.
func testNAR(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	for _, tok := range []string{
		"nix-archive-1",
		"(", "type", "directory",
		"entry", "(", "name", "bin", "node",
		"(", "type", "directory",
		"entry", "(", "name", "uv", "node",
		"(", "type", "regular",
		"executable", "",
		"contents", "#!/bin/sh\necho uv\n",
		")",
		")",
		")",
		")",
		")",
	} {
		narString(&buf, tok)
	}

	return buf.Bytes()
}

func newTestCacheServer(t *testing.T, narBytes []byte, fileHash string) (*httptest.Server, *int) {
	t.Helper()

	narinfoHits := 0

	mux := http.NewServeMux()
	mux.HandleFunc(fmt.Sprintf("/%s.narinfo", testDigest), func(w http.ResponseWriter, r *http.Request) {
		narinfoHits++
		fmt.Fprintf(w, "StorePath: /nix/store/%s-uv-0.5.1\n", testDigest)
		fmt.Fprintf(w, "URL: nar/test.nar\n")
		fmt.Fprintf(w, "Compression: none\n")
		fmt.Fprintf(w, "FileHash: sha256:%s\n", fileHash)
		fmt.Fprintf(w, "FileSize: %d\n", len(narBytes))
		fmt.Fprintf(w, "NarHash: sha256:%s\n", fileHash)
		fmt.Fprintf(w, "NarSize: %d\n", len(narBytes))
	})
	mux.HandleFunc("/nar/test.nar", func(w http.ResponseWriter, r *http.Request) {
		w.Write(narBytes)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, &narinfoHits
}

func Test_Cache_Resolve(t *testing.T) {
	narBytes := testNAR(t)
	sum := sha256.Sum256(narBytes)
	srv, narinfoHits := newTestCacheServer(t, narBytes, nixbase32.EncodeToString(sum[:]))

	c := NewCache(CacheConfig{
		URL:      srv.URL,
		StoreDir: t.TempDir(),
		Pins: map[string]string{
			"uv": fmt.Sprintf("/nix/store/%s-uv-0.5.1", testDigest),
		},
	})

	rp, err := c.Resolve(context.Background(), "uv")
	if err != nil {
		t.Fatal(err)
	}

	wantOut := filepath.Join(c.StoreDir, fmt.Sprintf("%s-uv-0.5.1", testDigest))
	if rp.OutPath != wantOut {
		t.Errorf("Assertion Failed \n\tgot: %q\n\texpected: %q", rp.OutPath, wantOut)
	}
	if rp.BinPath != filepath.Join(wantOut, "bin") {
		t.Errorf("Assertion Failed \n\tgot: %q\n\texpected: %q", rp.BinPath, filepath.Join(wantOut, "bin"))
	}

	b, err := os.ReadFile(filepath.Join(rp.BinPath, "uv"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "#!/bin/sh\necho uv\n" {
		t.Errorf("Assertion Failed \n\tgot: %q\n\texpected: %q", string(b), "#!/bin/sh\necho uv\n")
	}

	fi, err := os.Stat(filepath.Join(rp.BinPath, "uv"))
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode()&0o111 == 0 {
		t.Errorf("bin/uv should be executable, mode: %v", fi.Mode())
	}

	// second resolve must come from the local store, not the network
	if _, err := c.Resolve(context.Background(), "uv"); err != nil {
		t.Fatal(err)
	}
	if *narinfoHits != 1 {
		t.Errorf("Assertion Failed \n\tgot: %d narinfo fetches\n\texpected: 1", *narinfoHits)
	}
}

func Test_Cache_Resolve_failures(t *testing.T) {
	narBytes := testNAR(t)
	srv, _ := newTestCacheServer(t, narBytes, nixbase32.EncodeToString(make([]byte, sha256.Size)))

	tests := []struct {
		name string
		pins map[string]string
	}{
		{
			name: "[INVALID] no pin for package",
			pins: nil,
		},
		{
			name: "[INVALID] pin is not a store path",
			pins: map[string]string{"uv": "/tmp/not-a-store-path"},
		},
		{
			name: "[INVALID] file hash mismatch",
			pins: map[string]string{"uv": fmt.Sprintf("/nix/store/%s-uv-0.5.1", testDigest)},
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			c := NewCache(CacheConfig{
				URL:      srv.URL,
				StoreDir: t.TempDir(),
				Pins:     tt.pins,
			})

			if _, err := c.Resolve(context.Background(), "uv"); err == nil {
				t.Errorf("wanted error, but got no error")
			}

			// nothing may land in the store on failure
			entries, err := os.ReadDir(c.StoreDir)
			if err != nil {
				t.Fatal(err)
			}
			for _, e := range entries {
				if e.Name() == fmt.Sprintf("%s-uv-0.5.1", testDigest) {
					t.Errorf("failed resolution must not leave %s behind", e.Name())
				}
			}
		})
	}
}
