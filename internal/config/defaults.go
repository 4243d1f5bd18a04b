package config

import "time"

const defaultPort = 8080

var defaultMarketplace = Marketplace{
	BaseURL: "http://localhost:3000",
	Gateway: GatewaySettings{
		MaxAttempts: 4,
		BaseDelay:   150 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	},
}

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "tracking_db",
}

var defaultKafka = Kafka{
	Topic:   "delivery.assignments",
	GroupID: "service-tracker",
}

var defaultLocation = Location{
	Lat: 0,
	Lng: 0,
}

var defaultTracking = Tracking{
	OperationTimeout:  10 * time.Second,
	ReconcileInterval: time.Minute,
}

var defaultRateLimit = RateLimit{
	Enabled: false,
	Limit:   50,
	Window:  time.Second,
	MaxKeys: 10_000,
}

// DefaultPort returns the default HTTP port.
func DefaultPort() int {
	return defaultPort
}

// DefaultMarketplace returns the default marketplace backend settings.
func DefaultMarketplace() Marketplace {
	return defaultMarketplace
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultKafka returns the default assignment-events consumer settings.
func DefaultKafka() Kafka {
	return defaultKafka
}

// DefaultLocation returns the default static fallback position.
func DefaultLocation() Location {
	return defaultLocation
}

// DefaultTracking returns the default tracker settings.
func DefaultTracking() Tracking {
	return defaultTracking
}

// DefaultRateLimit returns the default HTTP rate limiting settings.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}
