package core

import (
	"context"

	"github.com/Comcast/matchbox/match"
)

// OptionalSpec makes an example Spec that's useful to have around.
//
// Decision "optional" examines an OptionalI32 (tags AnI32 with a
// payload and Nothing without).  Decision "foobar" examines records
// {x, y} where y is an OptionalI32 and uses a native guard to check
// whether x equals the payload of y.
func OptionalSpec(ctx context.Context) (*Spec, error) {

	variant := func(tag string, payload interface{}) interface{} {
		m := map[string]interface{}{
			match.TagKey: tag,
		}
		if payload != nil {
			m[match.PayloadKey] = payload
		}
		return m
	}

	same := &FuncGuard{
		F: func(ctx context.Context, bs match.Bindings, props Props) (bool, error) {
			return match.Equal(bs["n"], bs["m"]), nil
		},
	}

	spec := &Spec{
		Name: "optional",
		Types: map[string]*TypeDecl{
			"OptionalI32": {
				Tags: []TagDecl{
					{Name: "AnI32", Payload: true},
					{Name: "Nothing"},
				},
			},
		},
		Decisions: map[string]*Decision{
			"optional": {
				Type: "OptionalI32",
				Arms: []*ArmSource{
					{
						Pattern: variant("AnI32", "?n"),
						Action:  "int",
					},
					{
						Pattern: variant("Nothing", nil),
						Action:  "nothing",
					},
				},
			},
			"foobar": {
				Arms: []*ArmSource{
					{
						Pattern: map[string]interface{}{
							"x": 0,
							"y": "?",
						},
						Action: "zero",
					},
					{
						Pattern: map[string]interface{}{
							"x": "?n",
							"y": variant("AnI32", "?m"),
						},
						Guard:  same,
						Action: "same",
					},
					{
						Pattern: map[string]interface{}{
							"x": "?n",
							"y": variant("AnI32", "?m"),
						},
						Action: "different",
					},
					{
						Pattern: map[string]interface{}{
							"x": "?",
							"y": variant("Nothing", nil),
						},
						Action: "nothing",
					},
				},
			},
		},
	}

	if err := spec.Compile(ctx, nil, true); err != nil {
		return nil, err
	}

	return spec, nil
}
