package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// LoadConfig reads configuration in order of precedence: built-in defaults,
// the YAML file at path (optional), then BOT_* environment variables
// (e.g. BOT_TELEGRAM_TOKEN, BOT_AI_OLLAMA_BASE_URL). The result is
// validated before being returned.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
			}
		}
		// Missing config file is fine, defaults plus env vars apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", true)

	// An empty default makes the key visible to viper so BOT_TELEGRAM_TOKEN
	// can supply it without a config file.
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.trigger_name", "митя")
	v.SetDefault("telegram.buddy_prefix", "братан")

	v.SetDefault("database.path", "mitya.db")

	v.SetDefault("ai.provider", "ollama")
	v.SetDefault("ai.instruction",
		"Ты — Митя, дерзкий, но добродушный собеседник в груповом чате. Отвечай коротко и по делу.")
	v.SetDefault("ai.max_history_messages", 25)
	v.SetDefault("ai.history_window", 6*time.Hour)

	v.SetDefault("ai.ollama.base_url", "http://ollama:11434")
	v.SetDefault("ai.ollama.model", "mitya-gemma")
	v.SetDefault("ai.ollama.timeout", 30*time.Second)
	v.SetDefault("ai.ollama.classify_timeout", 3*time.Second)
	v.SetDefault("ai.ollama.num_predict", 150)
	v.SetDefault("ai.ollama.temperature", 0.7)

	v.SetDefault("ai.gemini.model_name", "gemini-2.0-flash")
	v.SetDefault("ai.gemini.temperature", 0.7)
	v.SetDefault("ai.gemini.max_retries", 2)
	v.SetDefault("ai.gemini.retry_delay_seconds", 5)

	v.SetDefault("whisper.binary_path", "whisper-cli")
	v.SetDefault("whisper.model_path", "models/ggml-small.bin")
	v.SetDefault("whisper.language", "ru")
	v.SetDefault("whisper.ffmpeg_path", "ffmpeg")
	v.SetDefault("whisper.timeout", 2*time.Minute)

	v.SetDefault("scheduler.timezone", "Europe/Moscow")
	// Per-key defaults so a config file overriding one task keeps the rest.
	v.SetDefault("scheduler.tasks.holiday_greeting.enabled", true)
	v.SetDefault("scheduler.tasks.holiday_greeting.schedule", "0 9 * * *")
	v.SetDefault("scheduler.tasks.memory_prune.enabled", true)
	v.SetDefault("scheduler.tasks.memory_prune.schedule", "30 * * * *")
	v.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.sql_maintenance.schedule", "0 4 * * 1")

	v.SetDefault("content.joke_url", "https://randstuff.ru/joke/generate/")
	v.SetDefault("content.joke_timeout", 10*time.Second)

	setMessageDefaults(v)
}

func setMessageDefaults(v *viper.Viper) {
	v.SetDefault("messages.welcome",
		"Здарова, %s! 👋\nЯ Митя. Теперь у меня есть память, характер и уши.\nПиши /menu чтобы узнать, че я могу.")
	v.SetDefault("messages.menu",
		"📋 *Меню Мити*\n\n"+
			"🤖 *Общение*\n"+
			"— Напиши «Митя, ...» — я отвечу\n"+
			"— В личке отвечаю всегда\n"+
			"— В группе могу вклиниться сам (настраивается)\n\n"+
			"🎤 *Голос*\n"+
			"— Отправь голосовое\n"+
			"— Если скажешь «Митя» — отвечу\n\n"+
			"🎲 *Команды в чате*\n"+
			"— `братан, выдай цитату`\n"+
			"— `братан, выдай анекдот`\n"+
			"— `братан, выбери А или Б`\n"+
			"— `братан, шанс ...`\n\n"+
			"📈 *Репутация*\n"+
			"— /karma — посмотреть свою карму\n"+
			"— За токсик карма падает, за позитив растёт\n\n"+
			"⚙️ *Управление*\n"+
			"— /settings — настройки (для админов)\n\n"+
			"😎 *Совет*\nЧем ты вежливее — тем я добрее.")
	v.SetDefault("messages.private_chat_id", "Привет! Мы в личном чате. Твой id чата %d")
	v.SetDefault("messages.group_chat_id", "Привет! Я работаю в группе: %s, id чата %d")
	v.SetDefault("messages.karma", "📈 Твоя репутация: %d")
	v.SetDefault("messages.karma_top", "\n\n🏆 Топ чата:")
	v.SetDefault("messages.settings_header", "🔧 *Настройки:*\n🎲 Шанс вклиниться: *%d%%*")
	v.SetDefault("messages.setting_changed", "⚙️ Настройка изменена: *%s* теперь *%s*")
	v.SetDefault("messages.chance_silent", "🤐 Митя больше не будет вклиниваться в разговор сам (Шанс 0%)")
	v.SetDefault("messages.chance_always", "📢 Митя теперь будет комментировать каждое сообщение! (Шанс 100%)")
	v.SetDefault("messages.chance_set", "🎲 Теперь Митя будет встревать в диалог с вероятностью *%d%%*")
	v.SetDefault("messages.not_chat_admin", "Настройки могут менять только админы чата.")
	v.SetDefault("messages.quote", "📜 %s")
	v.SetDefault("messages.joke", "😂 %s")
	v.SetDefault("messages.joke_fallback", "Анекдоты кончились. Приходи позже.")
	v.SetDefault("messages.chance_ack", "Шанс: %d%%")
	v.SetDefault("messages.choose_result", "🎲 Мой выбор: *%s*")
	v.SetDefault("messages.choose_usage", "Используй 'или'. Пример: братан, выбери А или Б")
	v.SetDefault("messages.chance_result", "🔮 Вероятность: *%d%%*")
	v.SetDefault("messages.transcript", "🎤 Расшифровка: %s")
	v.SetDefault("messages.transcript_reply", "🎤 Расшифровка: %s\n\n😎 Митя: %s")
	v.SetDefault("messages.nothing_heard", "Не расслышал...")
	v.SetDefault("messages.ai_fallback", "Чет я задумался...")
	v.SetDefault("messages.quotes_exhausted", "Цитаты временно закончились...")
	v.SetDefault("messages.holiday_announce", "🎉 %s!\n%s")
	v.SetDefault("messages.insult_reply", "Пидор - %s!")
	v.SetDefault("messages.general_error", "Что-то пошло не так. Попробуй еще раз.")
	v.SetDefault("messages.toggle_ai_name", "Мозг (ИИ)")
	v.SetDefault("messages.toggle_voice_name", "Слух (Войс)")
	v.SetDefault("messages.setting_enabled_tag", "✅ ВКЛ")
	v.SetDefault("messages.setting_disabled_tag", "❌ ВЫКЛ")
}
