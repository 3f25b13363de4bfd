package handlers

import (
	"github.com/haiphan0412/invoice-gate/internal/service/document"
	"github.com/haiphan0412/invoice-gate/pkg/logger"
)

type Handlers struct {
	Document *DocumentHandler
}

func NewHandlers(
	documentService document.DocumentProcessor,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Document: NewDocumentHandler(documentService, log),
	}
}
