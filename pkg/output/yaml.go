package output

import (
	"gopkg.in/yaml.v3"

	"github.com/haampie/classify-text-experiment/pkg/logger"
)

func (f *formatter) formatYAML(s *Summary) (string, error) {
	f.log.Debug("Formatting YAML output")

	bytes, err := yaml.Marshal(s)
	if err != nil {
		f.log.WithFields(logger.Fields{
			"error": err,
		}).Error("Failed to marshal YAML")
		return "", err
	}

	return string(bytes), nil
}
