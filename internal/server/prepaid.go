package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	prepaiddomain "github.com/smallbiznis/prepaid/internal/prepaid/domain"
	prepaidservice "github.com/smallbiznis/prepaid/internal/prepaid/service"
)

type prepaidOverviewRequest struct {
	ContractID string                   `json:"contract_id"`
	Contracts  []prepaiddomain.Contract `json:"contracts"`
}

func (s *Server) GetCustomerPrepaidHistory(c *gin.Context) {
	var query struct {
		ContractID string `form:"contract_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.prepaidSvc.CustomerHistory(c.Request.Context(), c.Param("id"), strings.TrimSpace(query.ContractID))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetContractPrepaidHistory(c *gin.Context) {
	resp, err := s.prepaidSvc.ContractHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCustomerPrepaidOverview(c *gin.Context) {
	var req prepaidOverviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, invalidRequestError())
		return
	}

	for i, contract := range req.Contracts {
		if contract.PrepaidBalance != nil && *contract.PrepaidBalance < 0 {
			field := "contracts[" + strconv.Itoa(i) + "].prepaidBalance"
			AbortWithError(c, newValidationError(field, "invalid_prepaid_balance", "prepaid balance cannot be negative"))
			return
		}
	}

	resp, err := s.prepaidSvc.Overview(c.Request.Context(), prepaidservice.OverviewRequest{
		CustomerID: c.Param("id"),
		ContractID: strings.TrimSpace(req.ContractID),
		Contracts:  req.Contracts,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
