package environments

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	WhatsApp   WhatsAppConfig
	OpenAI     OpenAIConfig
	Pinecone   PineconeConfig
	ElevenLabs ElevenLabsConfig
	Redis      RedisConfig
	Agent      AgentConfig
	Payment    PaymentConfig
	Sales      SalesConfig
	Auth       AuthConfig
}

type ServerConfig struct {
	Port string
}

type WhatsAppConfig struct {
	AccessToken string
	PhoneID     string
	VerifyToken string
	BaseURL     string
	Timeout     time.Duration
}

type OpenAIConfig struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	Temperature    float64
	WhisperModel   string
	// Source language passed to Whisper. The agent sells in Brazilian
	// Portuguese, so transcription defaults to "pt".
	Language string
}

type PineconeConfig struct {
	APIKey    string
	IndexHost string
	Timeout   time.Duration
}

type ElevenLabsConfig struct {
	APIKey  string
	VoiceID string
	Model   string
	Timeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AgentConfig struct {
	MediaFolder string
	TempFolder  string
	// Asset sent with FallbackProbability when no relevant media matched.
	FallbackMediaFile   string
	FallbackProbability float64
	TopK                int
}

type PaymentConfig struct {
	LinkNormal     string
	LinkDiscount40 string
	LinkDiscount50 string
}

// SalesConfig holds the heuristic keyword lists. They are plain
// configuration data so a locale swap never touches pipeline code.
type SalesConfig struct {
	BuyingKeywords []string
	PriceKeywords  []string
}

type AuthConfig struct {
	KBAPIKey string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: GetEnv("SERVER_PORT", "8000"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken: GetEnv("WHATSAPP_ACCESS_TOKEN", ""),
			PhoneID:     GetEnv("WHATSAPP_PHONE_ID", ""),
			VerifyToken: GetEnv("WHATSAPP_VERIFY_TOKEN", ""),
			BaseURL:     GetEnv("WHATSAPP_BASE_URL", "https://graph.facebook.com/v20.0"),
			Timeout:     GetEnvAsDuration("WHATSAPP_TIMEOUT", 30*time.Second),
		},
		OpenAI: OpenAIConfig{
			APIKey:         GetEnv("OPENAI_API_KEY", ""),
			ChatModel:      GetEnv("LLM_MODEL", "gpt-4o-mini"),
			EmbeddingModel: GetEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Temperature:    GetEnvAsFloat("LLM_TEMPERATURE", 0.6),
			WhisperModel:   GetEnv("WHISPER_MODEL", "whisper-1"),
			Language:       GetEnv("STT_LANGUAGE", "pt"),
		},
		Pinecone: PineconeConfig{
			APIKey:    GetEnv("PINECONE_API_KEY", ""),
			IndexHost: GetEnv("PINECONE_INDEX_HOST", ""),
			Timeout:   GetEnvAsDuration("PINECONE_TIMEOUT", 15*time.Second),
		},
		ElevenLabs: ElevenLabsConfig{
			APIKey:  GetEnv("ELEVENLABS_API_KEY", ""),
			VoiceID: GetEnv("ELEVENLABS_VOICE_ID", GetEnv("ELEVENLABS_VOICE_NAME", "")),
			Model:   GetEnv("ELEVENLABS_MODEL", "eleven_multilingual_v2"),
			Timeout: GetEnvAsDuration("ELEVENLABS_TIMEOUT", 60*time.Second),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", ""),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
		},
		Agent: AgentConfig{
			MediaFolder:         GetEnv("MEDIA_FOLDER", "materials/media"),
			TempFolder:          GetEnv("TEMP_FOLDER", "materials/temp"),
			FallbackMediaFile:   GetEnv("FALLBACK_MEDIA_FILE", "before_after.jpg"),
			FallbackProbability: GetEnvAsFloat("FALLBACK_MEDIA_PROBABILITY", 0.3),
			TopK:                GetEnvAsInt("KB_TOP_K", 3),
		},
		Payment: PaymentConfig{
			LinkNormal:     GetEnv("PAYMENT_LINK_NORMAL", "https://pay.example.com/linkA"),
			LinkDiscount40: GetEnv("PAYMENT_LINK_DISCOUNT40", "https://pay.example.com/linkA?disc=40"),
			LinkDiscount50: GetEnv("PAYMENT_LINK_DISCOUNT50", "https://pay.example.com/linkA?disc=50"),
		},
		Sales: SalesConfig{
			BuyingKeywords: GetEnvAsSlice("BUYING_KEYWORDS", []string{
				"quero comprar", "vou comprar", "fechar pedido",
				"me manda o link", "link de pagamento", "como pagar", "onde pago",
			}),
			PriceKeywords: GetEnvAsSlice("PRICE_KEYWORDS", []string{
				"caro", "preço", "muito caro",
			}),
		},
		Auth: AuthConfig{
			KBAPIKey: GetEnv("KB_API_KEY", ""),
		},
	}
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// GetEnvAsSlice reads a comma-separated list. Empty items are dropped.
func GetEnvAsSlice(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}

	if len(items) == 0 {
		return defaultValue
	}

	return items
}
