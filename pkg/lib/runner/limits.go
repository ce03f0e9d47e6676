package runner

// Limits are the cgroup v2 settings written for each child. Zero values
// leave the kernel default in place.
type Limits struct {
	CPUWeight  int   `yaml:"cpu_weight"`
	IOWeight   int   `yaml:"io_weight"`
	MemoryHigh int64 `yaml:"memory_high"`
}

var DefaultLimits = Limits{
	CPUWeight:  100,
	IOWeight:   100,
	MemoryHigh: 512 << 20,
}
