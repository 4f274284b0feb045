package xhsnote

const fullNoteBody = `{
  "code": 200,
  "message": "success",
  "data": {
    "note_list": [
      {
        "id": "abc123",
        "title": "Weekend in Hangzhou",
        "desc": "West Lake at sunrise #travel",
        "user": {
          "userid": "5f0000000000000001",
          "nickname": "traveler",
          "image": "https://sns-avatar.example.com/avatar.jpg"
        },
        "images_list": [
          {"url": "https://sns-img.example.com/1.jpg", "width": 1080},
          {"url": "https://sns-img.example.com/2.jpg", "width": 1080},
          {"width": 720}
        ],
        "liked_count": 1024,
        "collected_count": 256,
        "comments_count": 64,
        "shared_count": 16,
        "time": 1700000000000,
        "share_info": {"link": "https://www.xiaohongshu.com/discovery/item/abc123?share_from=app"}
      }
    ]
  }
}`

const sparseNoteBody = `{
  "code": 200,
  "data": {
    "note_list": [
      {"id": "sparse1"}
    ]
  }
}`
