package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	investback "crypto_invest_back"
	"crypto_invest_back/pkg/events"
	"crypto_invest_back/pkg/handler"
	"crypto_invest_back/pkg/repository"
	"crypto_invest_back/pkg/service"
	"crypto_invest_back/pkg/storage"
	"crypto_invest_back/pkg/utils"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))
	logrus.Infoln("Запуск сервера")
	if err := godotenv.Load(); err != nil {
		logrus.Infof("Ошибка инициализации переменных окружения .env: %s \n", err)
	}

	if err := InitConfig(); err != nil {
		logrus.Fatalf("Ошибка (viper) при инициализации конфига .yaml: %s \n", err.Error())
	}
	logrus.Infoln("Конфиг YAML инициализирован")

	db, err := repository.NewPostgresDB(repository.Config{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   viper.GetString("db.dbname"),
		SSLMode:  viper.GetString("db.sslmode"),
	})
	if err != nil {
		logrus.Fatalf("Ошибка при инициализации базы данных: %s \n", err.Error())
	}
	logrus.Info("База данных подключена")

	receipts, err := storage.NewReceiptStore(viper.GetString("uploads.dir"))
	if err != nil {
		logrus.Fatalf("Ошибка при инициализации хранилища чеков: %s \n", err.Error())
	}

	growthRate, err := decimal.NewFromString(viper.GetString("growth.daily_rate"))
	if err != nil {
		logrus.Fatalf("Некорректный growth.daily_rate: %s \n", err.Error())
	}

	publisher := events.NewPublisher(viper.GetStringSlice("kafka.brokers"), viper.GetString("kafka.topic"))
	mailer := utils.NewMailer(viper.GetString("mail.from_email"), viper.GetString("mail.from_name"))

	repos := repository.NewRepository(db)
	services := service.NewService(repos, service.Config{
		CoinGeckoAPIKey: os.Getenv("COINGECKO_API_KEY"),
		RateCacheTTL:    viper.GetDuration("rates.cache_ttl"),
		GrowthDailyRate: growthRate,
		GrowthInterval:  viper.GetDuration("growth.interval"),
		ReminderAge:     viper.GetDuration("growth.reminder_age"),
	}, publisher, mailer)

	if err := services.DepositWallets.EnsureSeeded(); err != nil {
		logrus.Fatalf("Ошибка при генерации депозитных кошельков: %s \n", err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	services.Growth.Start(ctx)

	handlers := handler.NewHandler(services, receipts)

	srv := new(investback.Server)
	if err := srv.Run(os.Getenv("PORT"), handlers.InitRoute()); err != nil {
		logrus.Fatalf("Ошибка при запуске сервера: %s \n", err)
	}
}

func InitConfig() error {
	viper.AddConfigPath("configs")
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}
