package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"tutorbook/notifications/config"
	"tutorbook/notifications/pkg/jwt"
)

// tokengen 使用与 server 相同的签名密钥签发 ID Token
//
//	go run ./cmd/tokengen -email sup@tutorbook.app -supervisor
func main() {
	email := flag.String("email", "", "凭证持有人的联系邮箱")
	supervisor := flag.Bool("supervisor", false, "是否授予督导身份")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "缺少 -email")
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("TUTORBOOK_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	token, err := jwt.NewManager(&cfg.Auth).GenerateIDToken(*email, *supervisor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "签发凭证失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
