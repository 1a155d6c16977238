package tiledlib

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/adm87/enum"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

const (
	FlipHorizontalFlag uint32 = 0x80000000
	FlipVerticalFlag   uint32 = 0x40000000
	GIDMask            uint32 = ^(FlipHorizontalFlag | FlipVerticalFlag)
)

// DecodeGID splits a raw tile id into its bare index and flip flags.
// A bare index of 0 is an empty cell.
func DecodeGID(gid uint32) (tileID uint32, flags FlipFlag) {
	tileID = gid & GIDMask
	if gid&FlipHorizontalFlag != 0 {
		flags |= FlipHorizontal
	}
	if gid&FlipVerticalFlag != 0 {
		flags |= FlipVertical
	}
	return
}

// EncodeGID is the inverse of DecodeGID.
func EncodeGID(tileID uint32, flags FlipFlag) uint32 {
	gid := tileID & GIDMask
	if flags&FlipHorizontal != 0 {
		gid |= FlipHorizontalFlag
	}
	if flags&FlipVertical != 0 {
		gid |= FlipVerticalFlag
	}
	return gid
}

// DataFormat reads the encoding and compression attributes of a <data> element.
func DataFormat(node *Node) (Encoding, Compression, error) {
	encoding := EncodingXML
	compression := CompressionNone

	if v, ok := node.Attr("encoding"); ok && v != "" {
		val, err := enum.UnmarshalEnum[Encoding](v)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: encoding %q", ErrUnsupportedFormat, v)
		}
		encoding = val
	}

	if v, ok := node.Attr("compression"); ok && v != "" {
		val, err := enum.UnmarshalEnum[Compression](v)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: compression %q", ErrUnsupportedFormat, v)
		}
		compression = val
	}

	return encoding, compression, nil
}

// MaxLayerCells caps width*height of a tile layer, a 16384x16384 grid.
const MaxLayerCells = 1 << 28

// cellCount returns width*height, failing for negative sizes and for products
// above MaxLayerCells, including ones that would overflow int.
func cellCount(width, height int) (int, error) {
	if width < 0 || height < 0 || (width > 0 && height > MaxLayerCells/width) {
		return 0, fmt.Errorf("%w: %dx%d layer exceeds %d cells", ErrSizeMismatch, width, height, MaxLayerCells)
	}
	return width * height, nil
}

// DecodeCellData decodes the <data> element of a width x height tile layer
// into raw tile ids in row-major order.
func DecodeCellData(node *Node, width, height int) ([]uint32, error) {
	encoding, compression, err := DataFormat(node)
	if err != nil {
		return nil, err
	}

	if encoding == EncodingXML {
		count, err := cellCount(width, height)
		if err != nil {
			return nil, err
		}
		return decodeXML(node, count)
	}
	return DecodeContent(node.Text, encoding, compression, width, height)
}

// DecodeContent decodes a textual csv or base64 payload.
func DecodeContent(content string, encoding Encoding, compression Compression, width, height int) ([]uint32, error) {
	count, err := cellCount(width, height)
	if err != nil {
		return nil, err
	}

	switch encoding {
	case EncodingCSV:
		return decodeCSV(content, width, count)

	case EncodingBase64:
		return decodeBase64(content, compression, count)
	}
	return nil, fmt.Errorf("%w: encoding %s has no text form", ErrUnsupportedFormat, encoding)
}

func decodeXML(node *Node, count int) ([]uint32, error) {
	tiles := node.ChildrenNamed("tile")
	if len(tiles) != count {
		return nil, fmt.Errorf("%w: %d tile elements, want %d", ErrSizeMismatch, len(tiles), count)
	}

	data := make([]uint32, count)
	for i, tile := range tiles {
		gid, err := tile.Uint32Or("gid", 0)
		if err != nil {
			return nil, err
		}
		data[i] = gid
	}
	return data, nil
}

// decodeCSV maps token j of non-empty line i to cell i*width+j.
func decodeCSV(content string, width, count int) ([]uint32, error) {
	// every value takes a digit and all but the last a separator
	if count > (len(content)+1)/2 {
		return nil, fmt.Errorf("%w: %d bytes of csv cannot hold %d values", ErrSizeMismatch, len(content), count)
	}
	data := make([]uint32, count)

	tokens := 0
	i := 0
	for line := range strings.FieldsFuncSeq(content, isLineBreak) {
		if strings.TrimSpace(line) == "" {
			continue
		}

		j := 0
		for s := range strings.SplitSeq(line, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}

			idx := i*width + j
			if idx >= count {
				return nil, fmt.Errorf("%w: csv cell %d outside a %d cell layer", ErrSizeMismatch, idx, count)
			}

			gid, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: csv token %q: %v", ErrParse, s, err)
			}

			data[idx] = uint32(gid)
			tokens++
			j++
		}
		i++
	}

	if tokens != count {
		return nil, fmt.Errorf("%w: %d csv values, want %d", ErrSizeMismatch, tokens, count)
	}
	return data, nil
}

func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r'
}

func decodeBase64(content string, compression Compression, count int) ([]uint32, error) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(content))
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrParse, err)
	}

	switch compression {
	case CompressionNone:
	case CompressionGzip:
		decoded, err = decompressGzip(decoded)
	case CompressionZlib:
		decoded, err = decompressZlib(decoded)
	case CompressionZstd:
		decoded, err = decompressZstd(decoded)
	default:
		return nil, fmt.Errorf("%w: compression %s", ErrUnsupportedFormat, compression)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s stream: %v", ErrParse, compression, err)
	}

	if len(decoded) != count*4 {
		return nil, fmt.Errorf("%w: %d bytes of layer data, want %d", ErrSizeMismatch, len(decoded), count*4)
	}

	data := make([]uint32, count)
	for i := range data {
		data[i] = binary.LittleEndian.Uint32(decoded[i*4:])
	}

	return data, nil
}

func decompress(data []byte, decompressFunc func(io.Reader) (io.ReadCloser, error)) ([]byte, error) {
	reader, err := decompressFunc(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var decompressed bytes.Buffer
	_, err = io.Copy(&decompressed, reader)
	if err != nil {
		return nil, err
	}

	return decompressed.Bytes(), nil
}

func decompressGzip(data []byte) ([]byte, error) {
	return decompress(data, func(r io.Reader) (io.ReadCloser, error) {
		return gzip.NewReader(r)
	})
}

func decompressZlib(data []byte) ([]byte, error) {
	return decompress(data, func(r io.Reader) (io.ReadCloser, error) {
		return zlib.NewReader(r)
	})
}

func decompressZstd(data []byte) ([]byte, error) {
	return decompress(data, func(r io.Reader) (io.ReadCloser, error) {
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return decoder.IOReadCloser(), nil
	})
}

// EncodeContent writes tile ids in the textual form read by DecodeContent.
// CSV output puts one row of width values per line, the way the editor does.
func EncodeContent(data []uint32, encoding Encoding, compression Compression, width int) (string, error) {
	switch encoding {
	case EncodingCSV:
		return encodeCSV(data, width), nil

	case EncodingBase64:
		return encodeBase64(data, compression)
	}
	return "", fmt.Errorf("%w: encoding %s has no text form", ErrUnsupportedFormat, encoding)
}

func encodeCSV(data []uint32, width int) string {
	var sb strings.Builder
	for i, gid := range data {
		if i > 0 {
			sb.WriteByte(',')
			if width > 0 && i%width == 0 {
				sb.WriteByte('\n')
			}
		}
		sb.WriteString(strconv.FormatUint(uint64(gid), 10))
	}
	return sb.String()
}

func encodeBase64(data []uint32, compression Compression) (string, error) {
	raw := make([]byte, len(data)*4)
	for i, gid := range data {
		binary.LittleEndian.PutUint32(raw[i*4:], gid)
	}

	var buf bytes.Buffer
	var w io.WriteCloser
	var err error

	switch compression {
	case CompressionNone:
		return base64.StdEncoding.EncodeToString(raw), nil
	case CompressionGzip:
		w = gzip.NewWriter(&buf)
	case CompressionZlib:
		w = zlib.NewWriter(&buf)
	case CompressionZstd:
		w, err = zstd.NewWriter(&buf)
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("%w: compression %s", ErrUnsupportedFormat, compression)
	}

	if _, err := w.Write(raw); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
