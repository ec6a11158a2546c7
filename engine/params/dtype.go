package params

// DataType identifies the element type of a tensor.
type DataType int

const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
)

// SizeBytes returns the per-element size of the data type.
func (dt DataType) SizeBytes() int64 {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	}
	return 0
}

func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	}
	return "unknown"
}
