package robot

import (
	_ "embed"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/sixdof/armkin/utils"
)

//go:embed crx10ial.json
var crx10ialJSON []byte

// JointConfig is one joint entry in a JSON model file. Angles are degrees
// and lengths millimeters in the file; the Model stores radians/mm.
type JointConfig struct {
	ID       string  `json:"id"`
	AlphaDeg float64 `json:"alpha_deg"`
	A        float64 `json:"a"`
	D        float64 `json:"d"`
	MinDeg   float64 `json:"min_deg"`
	MaxDeg   float64 `json:"max_deg"`
}

// CalibrationConfig mirrors Calibration in a JSON model file.
type CalibrationConfig struct {
	PositionScale float64 `json:"position_scale,omitempty"`
	FlipX         bool    `json:"flip_x,omitempty"`
	SignP         float64 `json:"sign_p,omitempty"`
	SignR         float64 `json:"sign_r,omitempty"`
	CoupleJ3      bool    `json:"couple_j3,omitempty"`
}

// ModelConfig is the on-disk description of an arm.
type ModelConfig struct {
	Name        string            `json:"name"`
	Joints      []JointConfig     `json:"joints"`
	Calibration CalibrationConfig `json:"calibration,omitempty"`
}

// ParseModelJSON builds a Model from raw JSON bytes.
func ParseModelJSON(data []byte) (*Model, error) {
	cfg := &ModelConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse model json")
	}

	dh := make([]DHParam, 0, len(cfg.Joints))
	limits := make([]Limit, 0, len(cfg.Joints))
	for _, j := range cfg.Joints {
		dh = append(dh, DHParam{
			Alpha: utils.DegToRad(j.AlphaDeg),
			A:     j.A,
			D:     j.D,
		})
		limits = append(limits, Limit{
			Min: utils.DegToRad(j.MinDeg),
			Max: utils.DegToRad(j.MaxDeg),
		})
	}

	return NewModel(cfg.Name, dh, limits, Calibration{
		PositionScale: cfg.Calibration.PositionScale,
		FlipX:         cfg.Calibration.FlipX,
		SignP:         cfg.Calibration.SignP,
		SignR:         cfg.Calibration.SignR,
		CoupleJ3:      cfg.Calibration.CoupleJ3,
	})
}

// ParseModelJSONFile reads and parses a JSON model file.
func ParseModelJSONFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read model file")
	}
	return ParseModelJSON(data)
}

// CRX10iAL returns the embedded reference model, a CRX-10iA/L class
// collaborative arm. Its wrist offset is nonzero, so it pairs with the
// redundancy-scan solver rather than the closed-form one.
func CRX10iAL() (*Model, error) {
	return ParseModelJSON(crx10ialJSON)
}
