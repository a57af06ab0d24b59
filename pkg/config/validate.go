package config

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Sternrassler/html-fragment-cache/pkg/identifier"
)

// Validate implements validation.Validatable.
func (s Source) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Type, validation.Required,
			validation.In(string(identifier.KindProperty), string(identifier.KindRoute))),
		validation.Field(&s.Path, validation.When(s.Type == string(identifier.KindProperty), validation.Required)),
		validation.Field(&s.Name, validation.When(s.Type == string(identifier.KindRoute), validation.Required)),
	)
}

// Validate implements validation.Validatable.
func (i IdentifierSettings) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Sources),
	)
}

// Validate implements validation.Validatable.
func (m MemorySettings) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&m.Shards, validation.Required, validation.Min(1)),
		validation.Field(&m.MaxTTL, validation.Required, validation.Min(1)),
	)
}

// Validate checks the settings. DefaultTTL is not checked: an unparsable
// value falls back to six hours at render time.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.CacheStore, validation.Required, validation.By(s.storeRegistered)),
		validation.Field(&s.Variant, validation.Required),
		validation.Field(&s.Version, validation.Required),
		validation.Field(&s.Identifier),
		validation.Field(&s.Stores, validation.Required, validation.Each(validation.In(DriverRedis, DriverMemory))),
		validation.Field(&s.Redis, validation.When(s.usesDriver(DriverRedis), validation.By(redisAddrRequired))),
		validation.Field(&s.Memory),
		validation.Field(&s.LogLevel, validation.In("debug", "info", "warn", "warning", "error")),
	)
}

func (s Settings) storeRegistered(value any) error {
	name, _ := value.(string)
	if _, ok := s.Stores[name]; !ok {
		return errors.New("must name a configured store")
	}
	return nil
}

func (s Settings) usesDriver(driver string) bool {
	for _, d := range s.Stores {
		if d == driver {
			return true
		}
	}
	return false
}

func redisAddrRequired(value any) error {
	r, _ := value.(RedisSettings)
	if r.Addr == "" {
		return errors.New("addr is required for redis stores")
	}
	return nil
}
