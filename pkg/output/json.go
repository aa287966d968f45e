package output

import (
	"encoding/json"

	"github.com/haampie/classify-text-experiment/pkg/logger"
)

func (f *formatter) formatJSON(s *Summary) (string, error) {
	f.log.Debug("Formatting JSON output")

	bytes, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		f.log.WithFields(logger.Fields{
			"error": err,
		}).Error("Failed to marshal JSON")
		return "", err
	}

	return string(bytes), nil
}
