package tiledlib

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"testing"
)

func mustParseNode(t testing.TB, doc string) *Node {
	t.Helper()
	node, err := ParseNode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseNode() error = %v", err)
	}
	return node
}

func xmlData(gids []uint32) string {
	var sb strings.Builder
	sb.WriteString("<data>")
	for _, gid := range gids {
		fmt.Fprintf(&sb, `<tile gid="%d"/>`, gid)
	}
	sb.WriteString("</data>")
	return sb.String()
}

func testGIDs(width, height int) []uint32 {
	gids := make([]uint32, width*height)
	for i := range gids {
		switch i % 5 {
		case 0:
			gids[i] = 0
		case 3:
			gids[i] = uint32(i) | FlipHorizontalFlag
		case 4:
			gids[i] = uint32(i) | FlipVerticalFlag | FlipHorizontalFlag
		default:
			gids[i] = uint32(i + 1)
		}
	}
	return gids
}

func TestDecodeGID(t *testing.T) {
	tests := []struct {
		name   string
		gid    uint32
		tileID uint32
		flags  FlipFlag
	}{
		{"empty", 0, 0, 0},
		{"plain", 7, 7, 0},
		{"horizontal", 0x80000005, 5, FlipHorizontal},
		{"vertical", 0x40000005, 5, FlipVertical},
		{"both", 0xC0000001, 1, FlipHorizontal | FlipVertical},
		{"flagged empty", 0x80000000, 0, FlipHorizontal},
		{"largest bare", 0x3FFFFFFF, 0x3FFFFFFF, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tileID, flags := DecodeGID(tt.gid)
			if tileID != tt.tileID || flags != tt.flags {
				t.Errorf("DecodeGID(%#x) = (%d, %s), want (%d, %s)", tt.gid, tileID, flags, tt.tileID, tt.flags)
			}
		})
	}
}

func TestDecodeGIDHorizontalOnly(t *testing.T) {
	tileID, flags := DecodeGID(0x80000005)
	if tileID != 5 {
		t.Errorf("tileID = %d, want 5", tileID)
	}
	if !flags.Horizontal() {
		t.Error("horizontal flip should be set")
	}
	if flags.Vertical() {
		t.Error("vertical flip should be clear")
	}
}

func TestEncodeGIDInvertsDecodeGID(t *testing.T) {
	ids := []uint32{0, 1, 5, 0x1FFFFFFF, 0x20000000, 0x3FFFFFFF, 0x40000000, 0x80000000, 0xC0000000, 0xDEADBEEF, 0xFFFFFFFF}
	for i := uint32(0); i < 1<<12; i++ {
		ids = append(ids, i*0x000FFFF1)
	}

	for _, id := range ids {
		tileID, flags := DecodeGID(id)
		if tileID&(FlipHorizontalFlag|FlipVerticalFlag) != 0 {
			t.Fatalf("DecodeGID(%#x) bare index %#x has flag bits set", id, tileID)
		}
		if got := EncodeGID(tileID, flags); got != id {
			t.Fatalf("EncodeGID(DecodeGID(%#x)) = %#x", id, got)
		}
	}
}

func TestBase64RoundTrip(t *testing.T) {
	const width, height = 7, 5
	want := testGIDs(width, height)

	for _, compression := range []Compression{CompressionNone, CompressionGzip, CompressionZlib, CompressionZstd} {
		t.Run(compression.String(), func(t *testing.T) {
			content, err := EncodeContent(want, EncodingBase64, compression, width)
			if err != nil {
				t.Fatalf("EncodeContent() error = %v", err)
			}

			got, err := DecodeContent(content, EncodingBase64, compression, width, height)
			if err != nil {
				t.Fatalf("DecodeContent() error = %v", err)
			}
			if !slices.Equal(got, want) {
				t.Errorf("DecodeContent() = %v, want %v", got, want)
			}
		})
	}
}

func TestCrossEncodingEquivalence(t *testing.T) {
	sizes := []struct{ w, h int }{{1, 1}, {2, 2}, {3, 1}, {1, 4}, {16, 9}}

	for _, size := range sizes {
		t.Run(fmt.Sprintf("%dx%d", size.w, size.h), func(t *testing.T) {
			want := testGIDs(size.w, size.h)

			csv, err := EncodeContent(want, EncodingCSV, CompressionNone, size.w)
			if err != nil {
				t.Fatal(err)
			}
			b64, err := EncodeContent(want, EncodingBase64, CompressionGzip, size.w)
			if err != nil {
				t.Fatal(err)
			}

			docs := map[string]string{
				"xml":         xmlData(want),
				"csv":         `<data encoding="csv">` + "\n" + csv + "\n</data>",
				"base64+gzip": `<data encoding="base64" compression="gzip">` + "\n   " + b64 + "\n  </data>",
			}

			for name, doc := range docs {
				got, err := DecodeCellData(mustParseNode(t, doc), size.w, size.h)
				if err != nil {
					t.Fatalf("%s: DecodeCellData() error = %v", name, err)
				}
				if !slices.Equal(got, want) {
					t.Errorf("%s: DecodeCellData() = %v, want %v", name, got, want)
				}
			}
		})
	}
}

func TestDecodeCSV(t *testing.T) {
	tests := []struct {
		name    string
		content string
		w, h    int
		want    []uint32
		wantErr error
	}{
		{
			name:    "rows",
			content: "1,2\n0,3",
			w:       2, h: 2,
			want: []uint32{1, 2, 0, 3},
		},
		{
			name:    "editor layout with trailing commas",
			content: "\n1,2,\r\n0,3\n",
			w:       2, h: 2,
			want: []uint32{1, 2, 0, 3},
		},
		{
			name:    "single line",
			content: "1,2,0,3",
			w:       2, h: 2,
			want: []uint32{1, 2, 0, 3},
		},
		{
			name:    "flag bits",
			content: "2147483653,0",
			w:       2, h: 1,
			want: []uint32{0x80000005, 0},
		},
		{
			name:    "malformed token",
			content: "1,x\n0,3",
			w:       2, h: 2,
			wantErr: ErrParse,
		},
		{
			name:    "negative token",
			content: "1,-2\n0,3",
			w:       2, h: 2,
			wantErr: ErrParse,
		},
		{
			name:    "overflowing token",
			content: "1,4294967296\n0,3",
			w:       2, h: 2,
			wantErr: ErrParse,
		},
		{
			name:    "too few values",
			content: "1,2\n0",
			w:       2, h: 2,
			wantErr: ErrSizeMismatch,
		},
		{
			name:    "too many rows",
			content: "1,2\n0,3\n4,4",
			w:       2, h: 2,
			wantErr: ErrSizeMismatch,
		},
		{
			name:    "long line spills into the next row",
			content: "1,2,3\n4",
			w:       2, h: 2,
			want: []uint32{1, 2, 4, 0},
		},
		{
			name:    "content too short for the layer",
			content: "1,2",
			w:       10000, h: 10000,
			wantErr: ErrSizeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeContent(tt.content, EncodingCSV, CompressionNone, tt.w, tt.h)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeContent() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeContent() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("DecodeContent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeBase64Errors(t *testing.T) {
	short, err := EncodeContent([]uint32{1, 2, 3}, EncodingBase64, CompressionNone, 2)
	if err != nil {
		t.Fatal(err)
	}
	long, err := EncodeContent([]uint32{1, 2, 3, 4, 5}, EncodingBase64, CompressionZlib, 2)
	if err != nil {
		t.Fatal(err)
	}
	plain, err := EncodeContent([]uint32{1, 2, 3, 4}, EncodingBase64, CompressionNone, 2)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		content     string
		compression Compression
		wantErr     error
	}{
		{"not base64", "!!!", CompressionNone, ErrParse},
		{"truncated", short, CompressionNone, ErrSizeMismatch},
		{"too long", long, CompressionZlib, ErrSizeMismatch},
		{"not gzip", plain, CompressionGzip, ErrParse},
		{"not zlib", plain, CompressionZlib, ErrParse},
		{"not zstd", plain, CompressionZstd, ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeContent(tt.content, EncodingBase64, tt.compression, 2, 2)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeContent() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeContentLayerSize(t *testing.T) {
	tests := []struct {
		name     string
		encoding Encoding
		w, h     int
	}{
		{"csv product overflows int", EncodingCSV, math.MaxInt, math.MaxInt},
		{"csv above cell cap", EncodingCSV, 100000, 100000},
		{"base64 product overflows int", EncodingBase64, math.MaxInt, math.MaxInt},
		{"base64 above cell cap", EncodingBase64, 100000, 100000},
		{"negative", EncodingCSV, -1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeContent("", tt.encoding, CompressionNone, tt.w, tt.h)
			if !errors.Is(err, ErrSizeMismatch) {
				t.Errorf("DecodeContent() error = %v, want %v", err, ErrSizeMismatch)
			}
		})
	}

	if _, err := DecodeContent("", EncodingCSV, CompressionNone, 0, 0); err != nil {
		t.Errorf("DecodeContent() of an empty layer error = %v", err)
	}
}

func TestDecodeCellDataErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"unknown encoding", `<data encoding="hex">01</data>`, ErrUnsupportedFormat},
		{"unknown compression", `<data encoding="base64" compression="lzma">AAAA</data>`, ErrUnsupportedFormat},
		{"too few tile elements", xmlData([]uint32{1, 2, 3}), ErrSizeMismatch},
		{"too many tile elements", xmlData([]uint32{1, 2, 3, 4, 5}), ErrSizeMismatch},
		{"malformed gid", `<data><tile gid="1"/><tile gid="a"/><tile/><tile/></data>`, ErrMalformedAttribute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCellData(mustParseNode(t, tt.doc), 2, 2)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeCellData() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeXMLMissingGIDIsEmpty(t *testing.T) {
	got, err := DecodeCellData(mustParseNode(t, `<data><tile gid="4"/><tile/></data>`), 2, 1)
	if err != nil {
		t.Fatalf("DecodeCellData() error = %v", err)
	}
	if !slices.Equal(got, []uint32{4, 0}) {
		t.Errorf("DecodeCellData() = %v, want [4 0]", got)
	}
}

func BenchmarkDecodeBase64Zlib(b *testing.B) {
	const width, height = 128, 128
	content, err := EncodeContent(testGIDs(width, height), EncodingBase64, CompressionZlib, width)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := DecodeContent(content, EncodingBase64, CompressionZlib, width, height); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeCSV(b *testing.B) {
	const width, height = 128, 128
	content, err := EncodeContent(testGIDs(width, height), EncodingCSV, CompressionNone, width)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := DecodeContent(content, EncodingCSV, CompressionNone, width, height); err != nil {
			b.Fatal(err)
		}
	}
}
