package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// MarshalPlan serializes a plan to indented JSON.
func MarshalPlan(p *Plan) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal plan: %w", err)
	}
	return data, nil
}

// UnmarshalPlan parses a plan from JSON data.
func UnmarshalPlan(data []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}
	return &p, nil
}

// WritePlanFile writes a plan to a JSON file at path.
func WritePlanFile(p *Plan, path string) error {
	data, err := MarshalPlan(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadPlanFile reads a plan from a JSON file at path.
func ReadPlanFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	return UnmarshalPlan(data)
}
