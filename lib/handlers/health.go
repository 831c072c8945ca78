package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

//GetHealth never touches the browser - it only says the process is up
func GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, NewHealthResp())
}
