package analysis

import (
	"fmt"
	"io/ioutil"

	"github.com/xhhuango/json"
)

// WriteReport marshals the report and writes it to path.
func WriteReport(path string, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("analysis: marshal report: %w", err)
	}
	if err := ioutil.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("analysis: write report to %s: %w", path, err)
	}
	return nil
}
