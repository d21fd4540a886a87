package pages

import "backoffice/internal/views/components"

const (
	SectionProducts = "products"
	SectionTools    = "tools"
)

func sidebar(active string) components.SidebarData {
	return components.SidebarData{
		Active: active,
		Links: []components.SidebarLink{
			{Label: "Menu costing", Path: "/app", Section: SectionProducts},
			{Label: "Import price sheet", Path: "/app/tools", Section: SectionTools},
		},
	}
}
