package config

import "fmt"

const (
	errRequiredEnvNotSetFmt = "required environment variable %s is not set"
	errRequiredWhenSetFmt   = "%s must be set when %s is set"
)

type messageBuilders struct {
	requiredEnvNotSet func(key string) string
	requiredWhenSet   func(key, dependsOn string) string
}

func newMessageBuilders() messageBuilders {
	return messageBuilders{
		requiredEnvNotSet: func(key string) string {
			return fmt.Sprintf(errRequiredEnvNotSetFmt, key)
		},
		requiredWhenSet: func(key, dependsOn string) string {
			return fmt.Sprintf(errRequiredWhenSetFmt, key, dependsOn)
		},
	}
}

var messages = newMessageBuilders()
