package systems

import (
	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/stats"
)

// RefreshTowerStats 根据 (类型, 等级, 元素) 重新计算塔的派生属性和载荷
func RefreshTowerStats(catalog *config.Catalog, tower *components.TowerComponent) error {
	base, err := catalog.Plant(tower.Type)
	if err != nil {
		return err
	}

	var attachment *stats.Attachment
	if tower.Element != nil {
		el, err := catalog.Element(tower.Element.Type)
		if err != nil {
			return err
		}
		attachment = &stats.Attachment{Type: tower.Element.Type, Level: tower.Element.Level, Config: el}
	}

	tower.Stats = stats.Resolve(base, catalog.Leveling, tower.Level, attachment, catalog.Engine)
	tower.Payload = stats.ResolvePayload(attachment)
	return nil
}
