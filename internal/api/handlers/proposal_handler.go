package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/grant-review/internal/application"
	"github.com/linskybing/grant-review/internal/domain/applicant"
	"github.com/linskybing/grant-review/internal/domain/proposal"
	"github.com/linskybing/grant-review/pkg/response"
)

// maxAttachmentSize bounds multipart uploads.
const maxAttachmentSize = 20 << 20

type ProposalHandler struct {
	svc *application.ProposalService
}

func NewProposalHandler(svc *application.ProposalService) *ProposalHandler {
	return &ProposalHandler{svc: svc}
}

// UpsertProfile godoc
// @Summary Create or update the caller's applicant profile
// @Tags applicants
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param input body applicant.UpsertApplicantDTO true "Profile"
// @Success 200 {object} applicant.Applicant
// @Router /applicants/me [put]
func (h *ProposalHandler) UpsertProfile(c *gin.Context) {
	actor, _, ok := actorAndID(c, "")
	if !ok {
		return
	}
	var input applicant.UpsertApplicantDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	profile, err := h.svc.UpsertProfile(c.Request.Context(), actor, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Create godoc
// @Summary Start a draft proposal in a call
// @Tags proposals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Call ID"
// @Param input body proposal.CreateProposalDTO true "Proposal"
// @Success 201 {object} proposal.Proposal
// @Failure 422 {object} response.ErrorResponse "Call not accepting submissions"
// @Router /calls/{id}/proposals [post]
func (h *ProposalHandler) Create(c *gin.Context) {
	actor, callID, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	var input proposal.CreateProposalDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.svc.Create(c.Request.Context(), actor, callID, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ListBlind godoc
// @Summary Blind listing of the proposals of a call
// @Tags proposals
// @Security BearerAuth
// @Produce json
// @Param id path int true "Call ID"
// @Success 200 {object} response.ListResponse[proposal.BlindView]
// @Router /calls/{id}/proposals [get]
func (h *ProposalHandler) ListBlind(c *gin.Context) {
	actor, callID, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	views, err := h.svc.ListBlind(c.Request.Context(), actor, callID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewList(views))
}

// ListMine godoc
// @Summary Proposals owned by the caller
// @Tags proposals
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.ListResponse[proposal.Proposal]
// @Router /proposals/mine [get]
func (h *ProposalHandler) ListMine(c *gin.Context) {
	actor, _, ok := actorAndID(c, "")
	if !ok {
		return
	}
	mine, err := h.svc.ListMine(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewList(mine))
}

// UpdateDraft godoc
// @Summary Edit a draft proposal
// @Tags proposals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Proposal ID"
// @Param input body proposal.UpdateProposalDTO true "Changes"
// @Success 200 {object} proposal.Proposal
// @Router /proposals/{id} [put]
func (h *ProposalHandler) UpdateDraft(c *gin.Context) {
	actor, id, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	var input proposal.UpdateProposalDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.svc.UpdateDraft(c.Request.Context(), actor, id, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Submit godoc
// @Summary Submit a draft proposal
// @Tags proposals
// @Security BearerAuth
// @Produce json
// @Param id path int true "Proposal ID"
// @Success 200 {object} proposal.Proposal
// @Router /proposals/{id}/submit [post]
func (h *ProposalHandler) Submit(c *gin.Context) {
	actor, id, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Submit(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Withdraw godoc
// @Summary Withdraw a proposal
// @Tags proposals
// @Security BearerAuth
// @Produce json
// @Param id path int true "Proposal ID"
// @Success 200 {object} proposal.Proposal
// @Router /proposals/{id}/withdraw [post]
func (h *ProposalHandler) Withdraw(c *gin.Context) {
	actor, id, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Withdraw(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UploadAttachment godoc
// @Summary Attach a file to a draft proposal
// @Tags proposals
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Proposal ID"
// @Param file formData file true "Attachment"
// @Success 201 {object} proposal.Attachment
// @Failure 503 {object} response.ErrorResponse "Storage not configured"
// @Router /proposals/{id}/attachments [post]
func (h *ProposalHandler) UploadAttachment(c *gin.Context) {
	actor, id, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAttachmentSize)
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer f.Close()

	att, err := h.svc.UploadAttachment(c.Request.Context(), actor, id, application.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, att)
}

// ListAttachments godoc
// @Summary List attachments with download links
// @Tags proposals
// @Security BearerAuth
// @Produce json
// @Param id path int true "Proposal ID"
// @Success 200 {object} response.ListResponse[proposal.Attachment]
// @Router /proposals/{id}/attachments [get]
func (h *ProposalHandler) ListAttachments(c *gin.Context) {
	actor, id, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	atts, err := h.svc.ListAttachments(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewList(atts))
}
