package enum

// ── Group A: State machines ──

const (
	OrderStatusDraft     = "DRAFT"
	OrderStatusPending   = "PENDING"
	OrderStatusPreparing = "PREPARING"
	OrderStatusReady     = "READY"
	OrderStatusServed    = "SERVED"
	OrderStatusPaid      = "PAID"
	OrderStatusVoid      = "VOID"
)

const (
	OrderItemStatusPending   = "PENDING"
	OrderItemStatusPreparing = "PREPARING"
	OrderItemStatusReady     = "READY"
	OrderItemStatusServed    = "SERVED"
)

const (
	TableStatusAvailable = "AVAILABLE"
	TableStatusOccupied  = "OCCUPIED"
	TableStatusReserved  = "RESERVED"
	TableStatusCleaning  = "CLEANING"
)

// ── Group B: Roles and order classification ──

const (
	UserRoleAdmin   = "ADMIN"
	UserRoleManager = "MANAGER"
	UserRoleCashier = "CASHIER"
	UserRoleKitchen = "KITCHEN"
)

const (
	OrderTypeDineIn   = "DINE_IN"
	OrderTypeTakeaway = "TAKEAWAY"
	OrderTypeDelivery = "DELIVERY"
)

// ── Group C: Configurable labels ──

const (
	StationHot    = "Hot"
	StationCold   = "Cold"
	StationBar    = "Bar"
	StationBakery = "Bakery"
	StationAll    = "All"
)

const (
	PaymentMethodCash   = "CASH"
	PaymentMethodCard   = "CARD"
	PaymentMethodOnline = "ONLINE"
)

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// ── Audit log vocabulary ──

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

const (
	ActionStaffLogin       = "STAFF_LOGIN"
	ActionStaffLogout      = "STAFF_LOGOUT"
	ActionSubmitOrder      = "SUBMIT_ORDER"
	ActionPaymentCollected = "PAYMENT_COLLECTED"
	ActionOrderVoided      = "ORDER_VOIDED"
	ActionReceiptReprinted = "RECEIPT_REPRINTED"
	ActionMenuModified     = "MENU_MODIFIED"
	ActionStockUpdate      = "STOCK_UPDATE"
	ActionManagerOverride  = "MANAGER_OVERRIDE"
	ActionPermissionDenied = "PERMISSION_DENIED"
	ActionAddMenuItem      = "ADD_MENU_ITEM"
	ActionEditMenuItem     = "EDIT_MENU_ITEM"
	ActionDeleteMenuItem   = "DELETE_MENU_ITEM"
	ActionReduceSentItem   = "REDUCE_SENT_ITEM"
)

// ValidStation reports whether s is one of the four preparation stations.
func ValidStation(s string) bool {
	switch s {
	case StationHot, StationCold, StationBar, StationBakery:
		return true
	}
	return false
}

// ValidDiscountType reports whether s is a known discount type.
func ValidDiscountType(s string) bool {
	switch s {
	case DiscountTypePercentage, DiscountTypeFixed:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether s is a known payment method.
func ValidPaymentMethod(s string) bool {
	switch s {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodOnline:
		return true
	}
	return false
}

// ValidOrderType reports whether s is a known fulfillment type.
func ValidOrderType(s string) bool {
	switch s {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
		return true
	}
	return false
}
