package config

type (
	// RegistryConfig selects and configures the presence registry backend
	RegistryConfig struct {
		Type  string              `yaml:"type" validate:"oneof=memory redis"` // memory or redis
		Redis RegistryRedisConfig `yaml:"redis"`
	}

	// RegistryRedisConfig represents the Redis configuration for the presence registry
	RegistryRedisConfig struct {
		RedisConfig  `yaml:",inline"`
		Prefix       string `yaml:"prefix"`
		ResetOnStart bool   `yaml:"reset_on_start"` // drop members left behind by a previous run
	}

	// BusConfig selects and configures the broadcast bus backend
	BusConfig struct {
		Type  string         `yaml:"type" validate:"oneof=memory redis"` // memory or redis
		Redis BusRedisConfig `yaml:"redis"`
	}

	// BusRedisConfig represents the Redis pub/sub configuration for the broadcast bus
	BusRedisConfig struct {
		RedisConfig `yaml:",inline"`
		Topic       string `yaml:"topic"`
	}

	// RedisConfig represents the connection settings shared by all Redis clients
	RedisConfig struct {
		ClusterType string `yaml:"cluster_type"` // single, sentinel or cluster
		Addr        string `yaml:"addr"`         // one address, or several separated by ',' or ';'
		MasterName  string `yaml:"master_name"`
		Username    string `yaml:"username"`
		Password    string `yaml:"password"`
		DB          int    `yaml:"db"`
	}
)

func (r *RegistryRedisConfig) setDefaults(prefix string) {
	r.RedisConfig.setDefaults()
	if r.Prefix == "" {
		r.Prefix = prefix
	}
}

func (b *BusRedisConfig) setDefaults(topic string) {
	b.RedisConfig.setDefaults()
	if b.Topic == "" {
		b.Topic = topic
	}
}

func (r *RedisConfig) setDefaults() {
	if r.ClusterType == "" {
		r.ClusterType = "single"
	}
	if r.Addr == "" {
		r.Addr = "localhost:6379"
	}
}
