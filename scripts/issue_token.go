// 签发调试用的访问令牌
//
// 服务本身不负责注册登录，令牌由上游身份服务签发；本地联调时用此脚本生成。
//
// 用法: go run scripts/issue_token.go -user <user_id> [-email a@b.com] [-ttl 24h]

package main

import (
	"coursegen_backend/internal/config"
	"coursegen_backend/internal/util"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

func main() {
	userID := flag.String("user", "", "令牌中的用户ID（sub）")
	email := flag.String("email", "", "用户邮箱")
	ttl := flag.Duration("ttl", 24*time.Hour, "有效期")
	path := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	if *userID == "" {
		log.Fatal("必须指定 -user")
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("jwt.secret 未配置")
	}

	token, err := util.GenerateJWT(*userID, *email, cfg.JWT.Secret, cfg.JWT.Issuer, *ttl)
	if err != nil {
		log.Fatalf("签发失败: %v", err)
	}
	fmt.Println(token)
}
