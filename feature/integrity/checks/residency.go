package checks

import (
	"sort"

	"texture-manager/core/texture"
)

// FailedUpload is a registered texture whose last upload failed.
type FailedUpload struct {
	Key        texture.Key `json:"key"`
	Object     string      `json:"object"`
	ColorSpace string      `json:"color_space"`
	Error      string      `json:"error"`
}

// ResidencyReport summarizes the health of the texture manager.
type ResidencyReport struct {
	Healthy    bool                `json:"healthy"`
	Worker     string              `json:"worker"`
	Pending    int                 `json:"pending"`
	Memory     texture.MemoryStats `json:"memory"`
	OverBudget bool                `json:"over_budget"`
	Failed     []FailedUpload      `json:"failed"`
}

// CheckResidency inspects the manager stats and the registered textures. The manager is
// healthy while its worker is started, video memory fits the budget and no upload failed.
func CheckResidency(stats texture.ManagerStats, textures []texture.TextureInfo) ResidencyReport {
	report := ResidencyReport{
		Worker:  stats.Worker,
		Pending: stats.Pending,
		Memory:  stats.Memory,
		Failed:  []FailedUpload{},
	}
	report.OverBudget = stats.Memory.BudgetBytes > 0 && stats.Memory.UsedBytes > stats.Memory.BudgetBytes

	for _, info := range textures {
		if info.Error == "" {
			continue
		}
		report.Failed = append(report.Failed, FailedUpload{
			Key:        info.Key,
			Object:     info.AssetID,
			ColorSpace: info.ColorSpace,
			Error:      info.Error,
		})
	}
	sort.Slice(report.Failed, func(i, j int) bool {
		return report.Failed[i].Key < report.Failed[j].Key
	})

	started := stats.Worker == "running" || stats.Worker == "draining"
	report.Healthy = started && !report.OverBudget && len(report.Failed) == 0
	return report
}
