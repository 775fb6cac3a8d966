package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/internal/transport/api/middlewares"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// getUserIDFromContext берет из контекста gin ID текущего юзера. ID устанавливается в
// middlewares.AuthRequired. В случае, если значения в контексте нет или ошибка утверждения типа -
// вернется 0.
func getUserIDFromContext(c *gin.Context) int64 {
	userIDVal, exist := c.Get(middlewares.CurrentUserIDKey)
	if !exist {
		return 0
	}
	userID, ok := userIDVal.(int64)
	if !ok {
		return 0
	}
	return userID
}

// getPageFromQuery читает параметры ?page= и ?limit= с разумными границами.
func getPageFromQuery(c *gin.Context) repoargs.Page {
	page, pageErr := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if pageErr != nil || page < 1 {
		page = 1
	}
	limit, limitErr := strconv.ParseInt(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)), 10, 64)
	if limitErr != nil || limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return repoargs.Page{Number: page, Limit: limit}
}
