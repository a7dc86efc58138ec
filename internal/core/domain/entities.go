package domain

// Role represents user role in the system
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// ApplicationStatus is the state of an agent application
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// IsTerminal reports whether no further transition is allowed
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationApproved || s == ApplicationRejected
}

// PropertyType classifies a property listing
type PropertyType string

const (
	PropertyLand       PropertyType = "land"
	PropertyApartment  PropertyType = "apartment"
	PropertyHouse      PropertyType = "house"
	PropertyRent       PropertyType = "rent"
	PropertyCommercial PropertyType = "commercial"
)

// IsValid reports whether t is a known property type
func (t PropertyType) IsValid() bool {
	switch t {
	case PropertyLand, PropertyApartment, PropertyHouse, PropertyRent, PropertyCommercial:
		return true
	}
	return false
}

// ListingStatus is the availability of a property or car
type ListingStatus string

const (
	ListingAvailable         ListingStatus = "available"
	ListingSold              ListingStatus = "sold"
	ListingRented            ListingStatus = "rented"
	ListingUnderConstruction ListingStatus = "underconstruction"
)

// IsValid reports whether s is a known listing status
func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingAvailable, ListingSold, ListingRented, ListingUnderConstruction:
		return true
	}
	return false
}

// CarCondition describes a vehicle's condition
type CarCondition string

const (
	CarNew       CarCondition = "new"
	CarUsed      CarCondition = "used"
	CarCertified CarCondition = "certified"
)

// IsValid reports whether c is a known car condition
func (c CarCondition) IsValid() bool {
	switch c {
	case CarNew, CarUsed, CarCertified:
		return true
	}
	return false
}

// PaymentStatus mirrors the gateway transaction status
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSuccess   PaymentStatus = "success"
	PaymentFailed    PaymentStatus = "failed"
	PaymentAbandoned PaymentStatus = "abandoned"
)
