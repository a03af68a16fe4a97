package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Auth     Auth
	Practice Practice
}

type Server struct {
	Port string
}
type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}
type Auth struct {
	JWTSecret string
}

// Practice holds the tunables of the attempt lifecycle. The defaults match
// the printed-paper workflow: one hour to finish, two tries per paper.
type Practice struct {
	AttemptTimeout   time.Duration
	MaxAttempts      int
	GradingTolerance float64
	SubmitGrace      time.Duration
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("ATTEMPT_TIMEOUT", "1h")
	viper.SetDefault("MAX_ATTEMPTS", 2)
	viper.SetDefault("GRADING_TOLERANCE", 0.01)
	viper.SetDefault("SUBMIT_GRACE", "2s")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Auth.JWTSecret = viper.GetString("JWT_SECRET")

	config.Practice.AttemptTimeout = viper.GetDuration("ATTEMPT_TIMEOUT")
	config.Practice.MaxAttempts = viper.GetInt("MAX_ATTEMPTS")
	config.Practice.GradingTolerance = viper.GetFloat64("GRADING_TOLERANCE")
	config.Practice.SubmitGrace = viper.GetDuration("SUBMIT_GRACE")

	log.Info().Str("port", config.Server.Port).Msg("Config loaded")
	return &config, nil

}
