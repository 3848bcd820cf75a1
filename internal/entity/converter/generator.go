package converter

import (
	"metagen/internal/entity/dto"
	"metagen/internal/generator"
)

// GeneratorToItem 将生成器配置转换为对外描述。
func GeneratorToItem(p *generator.Profile) dto.GeneratorItem {
	if p == nil {
		return dto.GeneratorItem{}
	}
	item := dto.GeneratorItem{
		ID:         p.ID,
		Slug:       p.Slug,
		Title:      p.Title,
		Structure:  p.Structure,
		Generate:   p.Generate,
		Delimiter:  p.Delimiter,
		Models:     p.Models,
		ComingSoon: p.ComingSoon,
	}
	for _, category := range p.Categories {
		item.Categories = append(item.Categories, dto.Category{ID: category.ID, Name: category.Name})
	}
	return item
}

// GeneratorsToItems 批量转换生成器配置。
func GeneratorsToItems(profiles []*generator.Profile) []dto.GeneratorItem {
	items := make([]dto.GeneratorItem, 0, len(profiles))
	for _, p := range profiles {
		items = append(items, GeneratorToItem(p))
	}
	return items
}
