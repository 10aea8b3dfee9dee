// モバイルカードコネクタのエントリポイント。
// モバイル集約クライアントへ「カード」HTTPインターフェースを公開し、
// バックエンドのサービスデスクの承認フローをカードとして配信する。
// 呼び出し元の認証はリモート公開鍵によるベアラートークン検証で行う。
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/nao1215/flowdesk/internal/connector"
)

func main() {
	// .envは開発時の利便のためで、無くてもエラーにしない
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server, err := connector.NewServer(port)
	if err != nil {
		log.Fatalf("コネクタサーバーの初期化に失敗: %v", err)
	}

	log.Printf("コネクタを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("コネクタの起動に失敗: %v", err)
	}
}
