package repositories

import "gorm.io/gorm"

// Set bundles one implementation of every repository
type Set struct {
	Users        UserRepository
	Applications AgentApplicationRepository
	Properties   PropertyRepository
	Cars         CarRepository
	Chats        ChatRepository
	Payments     PaymentRepository
}

// NewGormSet builds the GORM-backed repositories over db
func NewGormSet(db *gorm.DB) Set {
	return Set{
		Users:        NewUserRepository(db),
		Applications: NewAgentApplicationRepository(db),
		Properties:   NewPropertyRepository(db),
		Cars:         NewCarRepository(db),
		Chats:        NewChatRepository(db),
		Payments:     NewPaymentRepository(db),
	}
}
