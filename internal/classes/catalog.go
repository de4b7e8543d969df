// Package classes はジムのクラスカタログを提供する。
// カタログは静的な定義で、永続化は行わない。
package classes

import "github.com/hitoshi/fittrack/internal/model"

// catalog は開講中クラスの定義。
var catalog = []model.Class{
	{
		ID:          "spinning",
		Name:        "Spinning",
		Description: "High-intensity indoor cycling set to music.",
		Schedule:    "Mon/Wed/Fri 18:00",
		Level:       "all",
	},
	{
		ID:          "pilates",
		Name:        "Pilates",
		Description: "Core strength and flexibility on the mat.",
		Schedule:    "Tue/Thu 09:00",
		Level:       "beginner",
	},
	{
		ID:          "crossfit",
		Name:        "CrossFit",
		Description: "Functional movements performed at high intensity.",
		Schedule:    "Mon-Fri 07:00",
		Level:       "advanced",
	},
	{
		ID:          "yoga",
		Name:        "Yoga",
		Description: "Vinyasa flow focusing on breath and balance.",
		Schedule:    "Sat/Sun 10:00",
		Level:       "all",
	},
	{
		ID:          "boxing",
		Name:        "Boxing",
		Description: "Pad work, conditioning and technique drills.",
		Schedule:    "Tue/Thu 19:30",
		Level:       "intermediate",
	},
}

// Catalog はクラスカタログへの読み取りアクセスを提供する。
type Catalog struct{}

// NewCatalog はCatalogを生成する。
func NewCatalog() *Catalog {
	return &Catalog{}
}

// List は開講中の全クラスを返す。
// 返却されるスライスは呼び出しごとのコピーで、呼び出し側が変更してもカタログは影響を受けない。
func (c *Catalog) List() []model.Class {
	out := make([]model.Class, len(catalog))
	copy(out, catalog)
	return out
}
