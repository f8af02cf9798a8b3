package cnst

const (
	// HuddleYaml is the default configuration file name
	HuddleYaml = "huddle.yaml"
)

// Redis deployment topologies understood by the redis-backed registry and bus
const (
	RedisClusterTypeSingle   = "single"
	RedisClusterTypeSentinel = "sentinel"
	RedisClusterTypeCluster  = "cluster"
)

// Backend selectors for the presence registry and the broadcast bus
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)
