package model

// All returns every persisted model in migration order.
func All() []any {
	return []any{
		&CategoryModel{},
		&SubcategoryModel{},
		&RuleModel{},
		&StagingRowModel{},
		&FactModel{},
		&EnrichmentModel{},
	}
}
