package config

import (
	"fmt"
	"log"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Data : config data
type Data struct {
	AppPort               string `mapstructure:"appPort" yaml:"appPort,omitempty"`
	ServiceName           string `mapstructure:"serviceName" yaml:"serviceName,omitempty"`
	DBHost                string `mapstructure:"dbHost" yaml:"dbHost,omitempty"`
	DBUser                string `mapstructure:"dbUser" yaml:"dbUser,omitempty"`
	DBPassword            string `mapstructure:"dbPassword" yaml:"dbPassword,omitempty"`
	DBName                string `mapstructure:"dbName" yaml:"dbName,omitempty"`
	MaxIdleConns          int    `mapstructure:"maxIdleConns" yaml:"maxIdleConns,omitempty"`
	MaxOpenConns          int    `mapstructure:"maxOpenConns" yaml:"maxOpenConns,omitempty"`
	ConnMaxLifetime       int    `mapstructure:"connMaxLifetime" yaml:"connMaxLifetime,omitempty"`
	RedisAddress          string `mapstructure:"redisAddress" yaml:"redisAddress,omitempty"`
	RedisPassword         string `mapstructure:"redisPassword" yaml:"redisPassword,omitempty"`
	TransferService       string `mapstructure:"transferServiceURL" yaml:"transferServiceURL,omitempty"`
	ServiceID             string `mapstructure:"serviceId" yaml:"serviceId,omitempty"`
	ServiceKey            string `mapstructure:"serviceKey" yaml:"serviceKey,omitempty"`
	PurgeCacheInterval    int    `mapstructure:"purgeCacheInterval" yaml:"purgeCacheInterval,omitempty"`
	ExpireCacheDuration   int    `mapstructure:"expireCacheDuration" yaml:"expireCacheDuration,omitempty"`
	RequestTimeout        int    `mapstructure:"requestTimeout" yaml:"requestTimeout,omitempty"`
	LockerPrefix          string `mapstructure:"lockerPrefix" yaml:"lockerPrefix,omitempty"`
	BatchLockTTL          int64  `mapstructure:"batchLockTTL" yaml:"batchLockTTL,omitempty"`
	StuckRelationWaitTime int    `mapstructure:"stuckRelationWaitTime" yaml:"stuckRelationWaitTime,omitempty"`
	RecoveryCronInterval  string `mapstructure:"recoveryCronInterval" yaml:"recoveryCronInterval,omitempty"`
}

// Init : initialize data
func (c *Data) Init(configDir string) {

	dir, dirErr := os.Getwd()
	if dirErr != nil {
		log.Printf("Cannot set default input/output directory to the current working directory >> %s", dirErr)
	}

	viper.SetEnvPrefix("ims") // Prefix all env variable with IMS (Infini Manager Service)
	viper.AutomaticEnv()
	viper.BindEnv("appPort")
	viper.BindEnv("serviceId")
	viper.BindEnv("serviceKey")
	viper.BindEnv("dbPassword")
	viper.BindEnv("redisPassword")

	viper.SetConfigName("config")
	viper.AddConfigPath("../")
	viper.AddConfigPath(dir)
	viper.AddConfigPath(configDir)
	viper.WatchConfig()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			panic(fmt.Errorf("\n Configuration file not found >>%s ", err))
		} else {
			panic(fmt.Errorf("\n fatal error: could not read from config file >>%s ", err))
		}
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				panic(fmt.Errorf("\n Configuration file not found >>%s ", err))
			} else {
				panic(fmt.Errorf("\n fatal error: could not read from config file >>%s ", err))
			}
		}
		viper.Unmarshal(c)
		fmt.Println("Config file changed:", e.Name)
	})

	viper.Unmarshal(c)
	log.Println("App configuration loaded successfully!")
}
