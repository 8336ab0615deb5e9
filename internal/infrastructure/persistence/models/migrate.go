package models

// All returns every model in migration-safe order: referenced tables come
// before the tables that reference them.
func All() []any {
	return []any{
		&TenantModel{},
		&ProjectModel{},
		&LinkedAccountModel{},
		&ConnectionModel{},
		&ContactModel{},
		&ContactEmailModel{},
		&ContactPhoneModel{},
		&ContactAddressModel{},
		&TicketModel{},
		&TagModel{},
		&TicketAssigneeModel{},
		&ProviderUserModel{},
		&TrackingCategoryModel{},
		&AttributeModel{},
		&EntityModel{},
		&AttributeValueModel{},
		&RemoteDataModel{},
	}
}
