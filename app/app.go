package app

import (
	"infini-manager/config"

	"github.com/gorilla/mux"
	"github.com/jinzhu/gorm"
)

// App : app struct
type App struct {
	Router *mux.Router
	Config config.Data
	DB     *gorm.DB
}
