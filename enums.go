package tiledlib

// ======================================================
// Orientation
// ======================================================

type Orientation uint8

const (
	OrientationOrthogonal Orientation = iota
	OrientationIsometric
)

func (o Orientation) String() string {
	switch o {
	case OrientationOrthogonal:
		return "orthogonal"
	case OrientationIsometric:
		return "isometric"
	default:
		return "unknown"
	}
}

func (o Orientation) IsValid() bool {
	return o >= OrientationOrthogonal && o <= OrientationIsometric
}

// ======================================================
// Encoding
// ======================================================

// Encoding is the layout of a <data> payload. EncodingXML is implied when
// the element carries no encoding attribute.
type Encoding uint8

const (
	EncodingXML Encoding = iota
	EncodingCSV
	EncodingBase64
)

func (e Encoding) String() string {
	switch e {
	case EncodingXML:
		return "xml"
	case EncodingCSV:
		return "csv"
	case EncodingBase64:
		return "base64"
	default:
		return "unknown"
	}
}

func (e Encoding) IsValid() bool {
	return e >= EncodingXML && e <= EncodingBase64
}

// ======================================================
// Compression
// ======================================================

type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZlib
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZlib:
		return "zlib"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

func (c Compression) IsValid() bool {
	return c >= CompressionNone && c <= CompressionZstd
}

// ======================================================
// LayerKind
// ======================================================

// LayerKind is named after the element that declares the layer.
type LayerKind uint8

const (
	LayerKindTile LayerKind = iota
	LayerKindObject
)

func (lk LayerKind) String() string {
	switch lk {
	case LayerKindTile:
		return "layer"
	case LayerKindObject:
		return "objectgroup"
	default:
		return "unknown"
	}
}

func (lk LayerKind) IsValid() bool {
	return lk >= LayerKindTile && lk <= LayerKindObject
}

// ======================================================
// ObjectKind
// ======================================================

type ObjectKind uint8

const (
	ObjectKindPlain ObjectKind = iota
	ObjectKindTile
	ObjectKindPolygon
	ObjectKindPolyline
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectKindPlain:
		return "plain"
	case ObjectKindTile:
		return "tile"
	case ObjectKindPolygon:
		return "polygon"
	case ObjectKindPolyline:
		return "polyline"
	default:
		return "unknown"
	}
}

func (k ObjectKind) IsValid() bool {
	return k >= ObjectKindPlain && k <= ObjectKindPolyline
}
