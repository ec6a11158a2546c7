package params

import "fmt"

// ReshapeParams configures a reshape to a fixed target shape. The target is
// stored inline as a fixed-size array so the record stays comparable.
// Element count must be preserved: the input volume must equal the target
// volume.
type ReshapeParams struct {
	TargetDims [MaxDims]int
	TargetRank int
}

// NewReshapeParams builds a ReshapeParams from a target shape. It fails when
// the target is empty, exceeds MaxDims, or has non-positive dimensions.
func NewReshapeParams(target Shape) (ReshapeParams, error) {
	if !target.wellFormed() {
		return ReshapeParams{}, configErrf(KindReshape, "malformed target shape %s", target)
	}
	p := ReshapeParams{TargetRank: len(target)}
	copy(p.TargetDims[:], target)
	return p, nil
}

// Target returns the configured target shape.
func (p ReshapeParams) Target() Shape {
	return Shape(p.TargetDims[:p.TargetRank]).Clone()
}

func (p ReshapeParams) Kind() OpKind { return KindReshape }
func (p ReshapeParams) sealed()      {}

func (p ReshapeParams) OutputShape(inputs []Shape) (Shape, error) {
	if len(inputs) != 1 {
		return nil, configErrf(KindReshape, "expected 1 input, got %d", len(inputs))
	}
	in := inputs[0]
	if !in.wellFormed() {
		return nil, configErrf(KindReshape, "malformed input shape %s", in)
	}
	target := Shape(p.TargetDims[:p.TargetRank])
	if !target.wellFormed() {
		return nil, configErrf(KindReshape, "malformed target shape %s", target)
	}
	if in.Volume() != target.Volume() {
		return nil, configErrf(KindReshape, "element count mismatch: %s has %d, target %s has %d",
			in, in.Volume(), target, target.Volume())
	}
	return target.Clone(), nil
}

func (p ReshapeParams) IsValid(inputs []Shape) bool { return validOrErr(p, inputs) }

func (p ReshapeParams) Fingerprint() string {
	return fmt.Sprintf("reshape(target=%s)", Shape(p.TargetDims[:p.TargetRank]))
}
