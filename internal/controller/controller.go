package controller

import (
	"chatstack_backend/pkg/ai"
	"chatstack_backend/pkg/config"
	"chatstack_backend/pkg/utils/storage"
	"chatstack_backend/pkg/vector"

	razorpay "github.com/razorpay/razorpay-go"
)

// Shared collaborators, wired once from main. The domain packages stay
// injectable; only this HTTP layer holds them as package state.
var (
	cfg         *config.Config
	fileStore   storage.Store
	razorClient *razorpay.Client
	rag         *ai.Orchestrator
	vectors     *vector.Client
)

func Init(c *config.Config, store storage.Store, razor *razorpay.Client, orchestrator *ai.Orchestrator, vectorClient *vector.Client) {
	cfg = c
	fileStore = store
	razorClient = razor
	rag = orchestrator
	vectors = vectorClient
}
