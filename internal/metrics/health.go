package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Health is a point-in-time view of the process and its data directory.
type Health struct {
	Status       string `json:"status"`
	AllocMB      uint64 `json:"alloc_mb"`
	SysMB        uint64 `json:"sys_mb"`
	NumGC        uint32 `json:"num_gc"`
	Goroutines   int    `json:"goroutines"`
	DataDiskSize string `json:"data_disk_size"`
	Recipes      int    `json:"recipes"`
	Soups        int    `json:"soups"`
}

// GetHealth collects runtime stats plus the catalog size.
func GetHealth(dataPath string, recipes, soups int) Health {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status := "ok"
	if recipes == 0 {
		status = "no catalog"
	}
	return Health{
		Status:       status,
		AllocMB:      m.Alloc / 1024 / 1024,
		SysMB:        m.Sys / 1024 / 1024,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
		DataDiskSize: formatBytes(dirSize(dataPath)),
		Recipes:      recipes,
		Soups:        soups,
	}
}

func dirSize(path string) int64 {
	var size int64
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size
}

func formatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
