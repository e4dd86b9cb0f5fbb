package auth

const (
	PermCatalogRead       = "catalog.read"
	PermCatalogWrite      = "catalog.write"
	PermCalendarRead      = "calendar.read"
	PermCalendarWrite     = "calendar.write"
	PermDeadlineCalculate = "deadline.calculate"
	PermHistoryRead       = "deadline.history.read"
	PermMattersRead       = "matters.read"
	PermMattersWrite      = "matters.write"
	PermAuditRead         = "audit.read"
	PermSystemAdmin       = "admin.system"
)

var DefaultPermissions = []string{
	PermCatalogRead,
	PermCatalogWrite,
	PermCalendarRead,
	PermCalendarWrite,
	PermDeadlineCalculate,
	PermHistoryRead,
	PermMattersRead,
	PermMattersWrite,
	PermAuditRead,
	PermSystemAdmin,
}

const (
	RoleAdmin    = "admin"
	RoleDefender = "defender"
	RoleClerk    = "clerk"
)

var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermCatalogRead,
		PermCatalogWrite,
		PermCalendarRead,
		PermCalendarWrite,
		PermDeadlineCalculate,
		PermHistoryRead,
		PermMattersRead,
		PermMattersWrite,
		PermAuditRead,
		PermSystemAdmin,
	},
	RoleDefender: {
		PermCatalogRead,
		PermCalendarRead,
		PermDeadlineCalculate,
		PermHistoryRead,
		PermMattersRead,
		PermMattersWrite,
	},
	RoleClerk: {
		PermCatalogRead,
		PermCalendarRead,
		PermMattersRead,
		PermMattersWrite,
	},
}
