package resolver

import (
	"reflect"
	"testing"
)

func Test_parseNARInfo(t *testing.T) {
	content := `StorePath: /nix/store/0c0jnkqkzr2b1rs1cjmm2pmagcbgr4ic-uv-0.5.1
URL: nar/1bn7c3bf8brkxfcn51b2xgc75mwsc6kjjlhfxkmm7vh51g9fnjzq.nar.xz
Compression: xz
FileHash: sha256:1bn7c3bf8brkxfcn51b2xgc75mwsc6kjjlhfxkmm7vh51g9fnjzq
FileSize: 4229176
NarHash: sha256:18fzsz1lzl6kvnwvkkwllzw9pzibjr3552cgqsvm9z5gjflksz5w
NarSize: 15989944
References: 0c0jnkqkzr2b1rs1cjmm2pmagcbgr4ic-uv-0.5.1
Deriver: 9hv46f7sjkxfkysylp1zy24smcbqxwsq-uv-0.5.1.drv
Sig: cache.nixos.org-1:signature
`

	info, err := parseNARInfo(content)
	if err != nil {
		t.Fatal(err)
	}

	want := &NARInfo{
		StorePath:   "/nix/store/0c0jnkqkzr2b1rs1cjmm2pmagcbgr4ic-uv-0.5.1",
		URL:         "nar/1bn7c3bf8brkxfcn51b2xgc75mwsc6kjjlhfxkmm7vh51g9fnjzq.nar.xz",
		Compression: "xz",
		FileHash:    "1bn7c3bf8brkxfcn51b2xgc75mwsc6kjjlhfxkmm7vh51g9fnjzq",
		FileSize:    4229176,
		NarHash:     "18fzsz1lzl6kvnwvkkwllzw9pzibjr3552cgqsvm9z5gjflksz5w",
		NarSize:     15989944,
		References:  []string{"0c0jnkqkzr2b1rs1cjmm2pmagcbgr4ic-uv-0.5.1"},
		Deriver:     "9hv46f7sjkxfkysylp1zy24smcbqxwsq-uv-0.5.1.drv",
		Signature:   "cache.nixos.org-1:signature",
	}

	if !reflect.DeepEqual(info, want) {
		t.Errorf("Assertion Failed \n\tgot: %+v\n\texpected: %+v", info, want)
	}
}

func Test_parseNARInfo_missingStorePath(t *testing.T) {
	if _, err := parseNARInfo("URL: nar/abc.nar.xz\n"); err == nil {
		t.Errorf("wanted error, but got no error")
	}
}
