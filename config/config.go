package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server       Server
	Database     Database
	Upload       Upload
	Ocr          Ocr
	GeminiApiKey string
	JWTSecret    string
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

// Upload bounds the multipart endpoint: at most MaxFiles files of
// MaxFileSizeMB each per request.
type Upload struct {
	MaxFiles      int
	MaxFileSizeMB int
}

// Ocr points at the external tools used for the scanned-PDF fallback.
type Ocr struct {
	PdftoppmPath  string
	TesseractPath string
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("UPLOAD_MAX_FILES", 10)
	viper.SetDefault("UPLOAD_MAX_FILE_SIZE_MB", 10)
	viper.SetDefault("OCR_PDFTOPPM_PATH", "pdftoppm")
	viper.SetDefault("OCR_TESSERACT_PATH", "tesseract")

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

	config.Upload.MaxFiles = viper.GetInt("UPLOAD_MAX_FILES")
	config.Upload.MaxFileSizeMB = viper.GetInt("UPLOAD_MAX_FILE_SIZE_MB")
	config.Ocr.PdftoppmPath = viper.GetString("OCR_PDFTOPPM_PATH")
	config.Ocr.TesseractPath = viper.GetString("OCR_TESSERACT_PATH")

	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")
	config.JWTSecret = viper.GetString("JWT_SECRET")

	log.Info().Str("port", config.Server.Port).Str("database", config.Database.Name).Msg("Config loaded")
	return &config, nil
}
