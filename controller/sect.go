package controller

import (
	"github.com/gin-gonic/gin"

	"go-cultivation/dto"
	"go-cultivation/service"
)

func (ctl *Controller) GetSectList(c *gin.Context) {
	ok(c, "success", dto.GetSectList{Sects: ctl.sects.List()})
}

func (ctl *Controller) GetSect(c *gin.Context) {
	v, found := ctl.sects.View(c.Param("sectID"))
	if !found {
		ctl.fail(c, service.ErrSectNotFound)
		return
	}
	ok(c, "success", v)
}
