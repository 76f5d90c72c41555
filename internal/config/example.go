package config

// ExampleJSON is the starter document written by config-init
const ExampleJSON = `{
  "version": "v0.1.0",
  "server": {
    "baseURL": "http://localhost:8080",
    "addr": ":8080",
    "name": "auth-front",
    "brandName": "Auth Front"
  },
  "api": {
    "baseURL": "https://api.example.com/auth",
    "timeout": "30s"
  },
  "session": {
    "encryptionKey": {"$env": "SESSION_ENCRYPTION_KEY"},
    "cookieMaxAge": "720h"
  },
  "google": {
    "clientId": {"$env": "GOOGLE_CLIENT_ID"},
    "clientSecret": {"$env": "GOOGLE_CLIENT_SECRET"},
    "redirectUri": "http://localhost:8080/oauth/callback"
  },
  "metrics": {
    "enabled": true,
    "addr": ":9090"
  },
  "log": {
    "level": "info",
    "format": "text"
  }
}
`
