package config

// Config - root configuration of a partition daemon.
// yaml tags for parsing.

type Config struct {
	Logger    LoggerConfig    `yaml:"logger"`
	Server    ServerConfig    `yaml:"http-server"`
	Partition PartitionConfig `yaml:"partition"`
	Discovery DiscoveryConfig `yaml:"discovery"`
}

type ServerConfig struct {
	Port int `yaml:"port" validate:"required,min=1,max=65535"`
}

// PartitionConfig describes the slice of the directory this daemon owns.
type PartitionConfig struct {
	// Service is the directory service this partition belongs to.
	Service string `yaml:"service" validate:"required"`

	// LowBound is the inclusive lower bound of the owned key range. The
	// lowest partition of a service should use math.MinInt64 so the topology
	// covers the whole key space.
	LowBound int64 `yaml:"low_bound"`

	// Advertise is the base URL other nodes reach this partition at,
	// e.g. "http://node1:8080". Defaults to localhost with the server port.
	Advertise string `yaml:"advertise"`
}

type DiscoveryConfig struct {
	// Servers lists the zookeeper ensemble, e.g. ["zk1:2181"]. Empty disables
	// registration (useful for single-box runs with static discovery).
	Servers []string `yaml:"servers"`
	Root    string   `yaml:"root"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
	JSON  bool   `yaml:"json"`
}

// Default returns a baseline development config.
func Default() Config {
	return Config{
		Logger: LoggerConfig{
			Level: "DEBUG",
			JSON:  false,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Partition: PartitionConfig{
			Service:  "users",
			LowBound: -9223372036854775808,
		},
		Discovery: DiscoveryConfig{
			Root: "/userdir",
		},
	}
}
