package controller

import (
	"support_chat_backend/internal/service"
	"support_chat_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type KnowledgeController struct {
	KnowledgeService *service.KnowledgeService
}

func NewKnowledgeController(knowledgeService *service.KnowledgeService) *KnowledgeController {
	return &KnowledgeController{KnowledgeService: knowledgeService}
}

// ListKnowledge godoc
// @Summary Knowledge base
// @Description Lists the FAQ and policy entries in the order they ground replies
// @Tags knowledge
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.KnowledgeItem}
// @Router /api/knowledge [get]
func (ctrl *KnowledgeController) ListKnowledge(c *gin.Context) {
	items, err := ctrl.KnowledgeService.List(c.Request.Context())
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, items)
}
